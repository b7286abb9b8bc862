package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"action"})

	// RateLimitStoreErrors counts limiter checks that failed in the store.
	RateLimitStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gratitude_rate_limit_store_errors_total",
		Help: "Rate limit checks that failed in the backing store",
	}, []string{"action"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector for serviceName. The
// collector registers with the default registry, so it is built once per
// process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
