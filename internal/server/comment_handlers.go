package server

import (
	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/thanks/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	thanksID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.commentService.ListComments(c.UserContext(), thanksID,
		c.QueryInt("page", 1), c.QueryInt("size", 0))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// CreateComment handles POST /api/thanks/:id/comments. New comments wait
// for moderation.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	thanksID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		ThanksID: thanksID,
		Text:     req.Text,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
