package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"gratitude/internal/middleware"
	"gratitude/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError(param, "Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "thanksId" -> "thanks ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseBody decodes the JSON request body into v, writing a 400 on failure.
func parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError maps a service error to its HTTP status. Internal errors are
// logged here since the client only sees a generic message.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)

	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.ResetAt != nil {
		if appErr.Limit > 0 {
			c.Set("X-RateLimit-Limit", strconv.Itoa(appErr.Limit))
			c.Set("X-RateLimit-Remaining", strconv.Itoa(appErr.Remaining))
		}
		c.Set("X-RateLimit-Reset", strconv.FormatInt(appErr.ResetAt.UnixMilli(), 10))
	}
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// viewerID returns the authenticated caller, or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

// mustUserID returns the authenticated caller. Only valid behind
// AuthRequired.
func mustUserID(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return 0, errResponseWritten
	}
	return id, nil
}

// isAdmin checks whether the given user has admin privileges. The flag is
// read from the store rather than the token.
func (s *Server) isAdmin(c *fiber.Ctx, userID uint) (bool, error) {
	return s.userRepo.IsAdmin(c.UserContext(), userID)
}
