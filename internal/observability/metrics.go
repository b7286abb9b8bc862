package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ThanksCreated counts thanks accepted for moderation by target kind.
	ThanksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_thanks_created_total",
		Help: "Total number of thanks created",
	}, []string{"target"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_like_toggles_total",
		Help: "Total number of like toggles by result",
	}, []string{"result"})

	// CommentsCreated counts comments submitted for moderation.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gratitude_comments_created_total",
		Help: "Total number of comments created",
	})

	// ReportsFiled counts reports filed by users.
	ReportsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gratitude_reports_filed_total",
		Help: "Total number of reports filed",
	})

	// ModerationActions counts admin approve/reject decisions.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_moderation_actions_total",
		Help: "Admin moderation decisions by entity and action",
	}, []string{"entity", "action"})

	// FeedQueryLatency records feed query latency by feed and mode.
	FeedQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gratitude_feed_query_latency_seconds",
		Help:    "Feed query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed", "mode"})

	// CacheLookups counts cache-aside lookups by cache name and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_cache_lookups_total",
		Help: "Cache lookups by cache and outcome",
	}, []string{"cache", "outcome"})
)
