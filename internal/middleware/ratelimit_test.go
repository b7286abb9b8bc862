package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gratitude/internal/models"
	"gratitude/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string, string, ratelimit.Policy) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("store down")
}

func TestRateLimit_HeadersAnd429(t *testing.T) {
	app := fiber.New()
	policy := ratelimit.Policy{MaxRequests: 2, Window: time.Minute}
	app.Post("/thanks", RateLimit(ratelimit.NewMemoryStore(), ratelimit.ActionThanksCreate, policy),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	do := func() *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/thanks", nil))
		require.NoError(t, err)
		return resp
	}

	first := do()
	assert.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Equal(t, "2", first.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Remaining"))

	second := do()
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "0", second.Header.Get("X-RateLimit-Remaining"))

	third := do()
	defer func() { _ = third.Body.Close() }()
	assert.Equal(t, http.StatusTooManyRequests, third.StatusCode)
	reset, err := strconv.ParseInt(third.Header.Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	assert.Greater(t, reset, time.Now().UnixMilli())

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(third.Body).Decode(&body))
	assert.Equal(t, models.CodeRateLimited, body.Code)
	require.NotNil(t, body.ResetAt)
}

func TestRateLimit_KeysByUser(t *testing.T) {
	app := fiber.New()
	store := ratelimit.NewMemoryStore()
	policy := ratelimit.Policy{MaxRequests: 1, Window: time.Minute}
	app.Post("/like", func(c *fiber.Ctx) error {
		id, _ := strconv.Atoi(c.Get("X-User"))
		c.Locals("userID", uint(id))
		return c.Next()
	}, RateLimit(store, ratelimit.ActionLikeToggle, policy), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/like", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, do("1"))
	assert.Equal(t, http.StatusOK, do("2"))
	assert.Equal(t, http.StatusTooManyRequests, do("1"))
}

func storeErrors(t *testing.T, action string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, RateLimitStoreErrors.WithLabelValues(action).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRateLimit_FailPolicies(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	before := storeErrors(t, "fail-policy")

	open := fiber.New()
	open.Get("/", RateLimit(failingLimiter{}, "fail-policy", ratelimit.LikeToggle), ok)
	resp, err := open.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	closed := fiber.New()
	closed.Get("/", RateLimitWithPolicy(failingLimiter{}, "fail-policy", ratelimit.LikeToggle, FailClosed), ok)
	resp, err = closed.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assert.Equal(t, before+2, storeErrors(t, "fail-policy"))
}
