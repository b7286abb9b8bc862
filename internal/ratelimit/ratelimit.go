// Package ratelimit implements fixed-window request throttling keyed by
// identifier and action.
package ratelimit

import (
	"context"
	"time"
)

// Policy is the number of requests allowed per window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Predefined policies.
var (
	ThanksCreate  = Policy{MaxRequests: 10, Window: time.Minute}
	CommentCreate = Policy{MaxRequests: 30, Window: time.Minute}
	LikeToggle    = Policy{MaxRequests: 100, Window: time.Minute}
	Signup        = Policy{MaxRequests: 3, Window: 10 * time.Minute}
	Login         = Policy{MaxRequests: 10, Window: 5 * time.Minute}
	MediaUpload   = Policy{MaxRequests: 20, Window: 10 * time.Minute}
)

// Action names used as the second half of a limiter key.
const (
	ActionThanksCreate  = "thanks:create"
	ActionCommentCreate = "comment:create"
	ActionLikeToggle    = "like:toggle"
	ActionSignup        = "auth:signup"
	ActionLogin         = "auth:login"
	ActionMediaUpload   = "media:upload"
)

// Result describes the state of a window after a check.
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter checks and records a request against a window. A request that
// exceeds the limit is reported with Success=false and is not counted.
type Limiter interface {
	Check(ctx context.Context, identifier, action string, p Policy) (Result, error)
}

func key(identifier, action string) string {
	return identifier + ":" + action
}

func remaining(limit, count int) int {
	if r := limit - count; r > 0 {
		return r
	}
	return 0
}
