package server

import (
	"context"
	"errors"
	"time"

	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/user/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/user/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	var in service.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = userID

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:userId
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	profile, err := s.userService.PublicProfile(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error": "Request timeout",
			})
		}
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// FollowUser handles POST /api/users/:userId/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.FollowUser(c.UserContext(), userID, targetID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": true})
}

// UnfollowUser handles DELETE /api/users/:userId/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.UnfollowUser(c.UserContext(), userID, targetID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": false})
}

// GetUserFollow handles GET /api/users/:userId/follow
func (s *Server) GetUserFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	following, err := s.followService.IsFollowingUser(c.UserContext(), viewerID(c), targetID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": following})
}
