package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandler_AddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("production", "info", &buf)
	t.Cleanup(func() { InitLogger("test", "info", &bytes.Buffer{}) })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(9))
	Logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":9`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestStructuredLogger_SkipsProbes(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("production", "info", &buf)
	t.Cleanup(func() { InitLogger("test", "info", &bytes.Buffer{}) })

	app := fiber.New()
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/thanks", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/thanks", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"path":"/api/thanks"`)
	assert.Contains(t, buf.String(), `"request_id"`)
}
