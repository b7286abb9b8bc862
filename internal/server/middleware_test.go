package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gratitude/internal/cache"
	"gratitude/internal/config"
	"gratitude/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_AuthRequired(t *testing.T) {
	// Setup app and config
	secret := "test-secret-key-12345678901234567890123456789012"
	s := &Server{
		config: &config.Config{JWTSecret: secret},
	}
	app := fiber.New()

	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		userID := c.Locals("userID")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": userID})
	})

	generateToken := func(userID uint, issuer, audience string, exp time.Duration) string {
		claims := jwt.MapClaims{
			"sub": strconv.FormatUint(uint64(userID), 10),
			"iss": issuer,
			"aud": audience,
			"exp": time.Now().Add(exp).Unix(),
			"jti": "test-jti-valid-length",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		str, _ := token.SignedString([]byte(secret))
		return str
	}

	tests := []struct {
		name           string
		authHeader     string
		tokenParam     string
		expectedStatus int
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + generateToken(123, middleware.TokenIssuer, middleware.TokenAudience, time.Hour),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Query Param Token Ignored",
			tokenParam:     generateToken(123, middleware.TokenIssuer, middleware.TokenAudience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateToken(123, middleware.TokenIssuer, middleware.TokenAudience, -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Issuer",
			authHeader:     "Bearer " + generateToken(123, "wrong-issuer", middleware.TokenAudience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Audience",
			authHeader:     "Bearer " + generateToken(123, middleware.TokenIssuer, "wrong-audience", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Header and Param",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Bearer Format",
			authHeader:     "BearerTokenOnly",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid Subject Type (Mocked Manually)",
			authHeader: "Bearer " + func() string {
				claims := jwt.MapClaims{"sub": 123, "iss": middleware.TokenIssuer, "aud": middleware.TokenAudience, "exp": time.Now().Add(time.Hour).Unix()}
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
				str, _ := token.SignedString([]byte(secret))
				return str
			}(),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/protected"
			if tt.tokenParam != "" {
				path += "?token=" + tt.tokenParam
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				_ = json.NewDecoder(resp.Body).Decode(&body)
				assert.Equal(t, float64(123), body["userID"])
			}
			_ = resp.Body.Close()
		})
	}
}

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestServer_AuthRequiredRejectsRevokedToken(t *testing.T) {
	secret := "test-secret-key-12345678901234567890123456789012"
	rdb := newMiniRedis(t)
	s := &Server{
		config: &config.Config{JWTSecret: secret},
		redis:  rdb,
	}
	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/logout", s.AuthRequired(), s.Logout)

	token, claims, err := middleware.IssueToken(secret, 7, time.Hour)
	require.NoError(t, err)

	call := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/protected"))
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/logout"))

	ttl, err := rdb.TTL(context.Background(), cache.RevokedJTIKey(claims.JTI)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/protected"))
}

func TestServer_OptionalAuth(t *testing.T) {
	secret := "test-secret-key-12345678901234567890123456789012"
	s := &Server{config: &config.Config{JWTSecret: secret}}
	app := fiber.New()
	app.Get("/feed", s.OptionalAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"viewer": viewerID(c)})
	})

	valid, _, err := middleware.IssueToken(secret, 42, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		viewer float64
	}{
		{name: "anonymous", viewer: 0},
		{name: "valid token", header: "Bearer " + valid, viewer: 42},
		{name: "garbage token", header: "Bearer not-a-jwt", viewer: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.viewer, body["viewer"])
		})
	}
}
