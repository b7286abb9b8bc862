package server

import (
	"log/slog"
	"strings"
	"time"

	"gratitude/internal/cache"
	"gratitude/internal/middleware"
	"gratitude/internal/models"
	"gratitude/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldError("name", err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldError("email", err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldError("password", err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return s.respondError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("an account with this email already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	hash := string(hashed)

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: &hash,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return s.respondError(c, err)
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, middleware.TokenTTL)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return s.respondError(c, err)
	}
	if user == nil || user.Password == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, middleware.TokenTTL)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The token's jti is remembered in
// Redis until the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("tokenClaims").(*middleware.TokenClaims)
	if claims == nil || claims.JTI == "" || s.redis == nil {
		return c.JSON(fiber.Map{"message": "Logged out"})
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl > 0 {
		if err := s.redis.Set(c.UserContext(), cache.RevokedJTIKey(claims.JTI), 1, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token",
				slog.String("error", err.Error()))
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
