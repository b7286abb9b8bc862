package server

import (
	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

type moderationRequest struct {
	Action string `json:"action"`
}

// AdminStats handles GET /api/admin/stats
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.moderationService.Stats(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}

// AdminQueue handles GET /api/admin/queue
func (s *Server) AdminQueue(c *fiber.Ctx) error {
	queue, err := s.moderationService.Queue(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(queue)
}

// AdminReports handles GET /api/admin/reports?status=
func (s *Server) AdminReports(c *fiber.Ctx) error {
	reports, err := s.moderationService.ListReports(c.UserContext(), c.Query("status"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(reports)
}

// AdminHandleReport handles PATCH /api/admin/reports/:id
func (s *Server) AdminHandleReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req moderationRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.moderationService.HandleReport(c.UserContext(), id, req.Action)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(report)
}

// moderate returns the PATCH /api/admin/<entity>/:id handler. approve
// publishes the row and reject deletes it.
func (s *Server) moderate(entity string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		var req moderationRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		if err := s.moderationService.Moderate(c.UserContext(), entity, id, req.Action); err != nil {
			return s.respondError(c, err)
		}

		message := "Approved"
		if req.Action == service.ActionReject {
			message = "Rejected"
		}
		return c.JSON(fiber.Map{"message": message})
	}
}
