package middleware

import (
	"fmt"
	"log/slog"
	"strconv"

	"gratitude/internal/models"
	"gratitude/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the rate limit store is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if the store is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if the store is unavailable.
	FailClosed
)

// Identifier keys a request by authenticated user, falling back to the
// client IP.
func Identifier(c *fiber.Ctx) string {
	if uid, ok := UserID(c); ok {
		return fmt.Sprintf("user:%d", uid)
	}
	return "ip:" + c.IP()
}

// SetRateLimitHeaders writes the X-RateLimit-* headers for res.
func SetRateLimitHeaders(c *fiber.Ctx, res ratelimit.Result) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.UnixMilli(), 10))
}

// RateLimit returns a Fiber middleware enforcing p for action.
// It defaults to FailOpen policy.
func RateLimit(l ratelimit.Limiter, action string, p ratelimit.Policy) fiber.Handler {
	return RateLimitWithPolicy(l, action, p, FailOpen)
}

// RateLimitWithPolicy is RateLimit with an explicit store failure policy.
func RateLimitWithPolicy(l ratelimit.Limiter, action string, p ratelimit.Policy, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		res, err := l.Check(c.UserContext(), Identifier(c), action, p)
		if err != nil {
			RateLimitStoreErrors.WithLabelValues(action).Inc()
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("action", action), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing open",
				slog.String("action", action), slog.String("error", err.Error()))
			return c.Next()
		}

		SetRateLimitHeaders(c, res)
		if !res.Success {
			RateLimited.WithLabelValues(action).Inc()
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError(res.ResetAt))
		}
		return c.Next()
	}
}
