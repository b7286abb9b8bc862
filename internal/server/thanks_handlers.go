package server

import (
	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListThanks handles GET /api/thanks
func (s *Server) ListThanks(c *fiber.Ctx) error {
	page, err := s.feedService.ListFeed(c.UserContext(), service.FeedQuery{
		Mode:        c.Query("mode"),
		CompanySlug: c.Query("companySlug"),
		Media:       c.Query("media"),
		Q:           c.Query("q"),
		Take:        c.QueryInt("take", 0),
		Cursor:      c.Query("cursor"),
		ViewerID:    viewerID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetThanks handles GET /api/thanks/:id
func (s *Server) GetThanks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.feedService.GetThanks(c.UserContext(), id, viewerID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// CreateThanks handles POST /api/thanks
func (s *Server) CreateThanks(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	var in service.CreateThanksInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.AuthorID = userID

	view, err := s.thanksService.CreateThanks(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UpdateThanks handles PATCH /api/thanks/:id
func (s *Server) UpdateThanks(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdateThanksInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = userID
	in.ThanksID = id

	view, err := s.thanksService.UpdateThanks(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteThanks handles DELETE /api/thanks/:id
func (s *Server) DeleteThanks(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.thanksService.DeleteThanks(c.UserContext(), userID, id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thanks deleted"})
}

// ReportThanks handles POST /api/thanks/:id/report
func (s *Server) ReportThanks(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	report, err := s.thanksService.ReportThanks(c.UserContext(), userID, id, req.Reason)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Report submitted",
		"reportId": report.ID,
	})
}

// ToggleLike handles POST /api/thanks/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.engagementService.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}
