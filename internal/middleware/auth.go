// Package middleware provides request-scoped Fiber middleware: authentication,
// rate limiting, logging, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gratitude/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "gratitude-api"
	TokenAudience = "gratitude-client"
	TokenTTL      = 7 * 24 * time.Hour
)

var errInvalidToken = errors.New("invalid token")

// TokenClaims is the validated content of an access token.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 access token for userID.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, *TokenClaims, error) {
	if secret == "" {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := &TokenClaims{
		UserID:    userID,
		JTI:       fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
		ExpiresAt: now.Add(ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": claims.ExpiresAt.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": claims.JTI,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates signature, expiry, issuer and audience.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, errInvalidToken
	}

	out := &TokenClaims{UserID: uint(userID)}
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RevocationCheck reports whether a token id was revoked.
type RevocationCheck func(ctx context.Context, jti string) bool

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's id in c.Locals("userID") and the user context.
func JWTAuth(secret string, revoked RevocationCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		if revoked != nil && claims.JTI != "" && revoked(c.UserContext(), claims.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		SetUser(c, claims)
		return c.Next()
	}
}

// SetUser records the authenticated caller on the request.
func SetUser(c *fiber.Ctx, claims *TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("tokenClaims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// UserID returns the authenticated caller, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
