package server

import (
	"strings"

	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCompanies handles GET /api/companies
func (s *Server) ListCompanies(c *fiber.Ctx) error {
	page, err := s.directoryService.Search(c.UserContext(), c.Query("q"),
		c.QueryInt("page", 1), c.QueryInt("size", 0))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// CreateCompany handles POST /api/companies
func (s *Server) CreateCompany(c *fiber.Ctx) error {
	var in service.CreateCompanyInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	company, err := s.directoryService.CreateCompany(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// GetCompany handles GET /api/companies/:slug
func (s *Server) GetCompany(c *fiber.Ctx) error {
	detail, err := s.directoryService.GetCompany(c.UserContext(), slugParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(detail)
}

// ListCompanyThanks handles GET /api/companies/:slug/thanks
func (s *Server) ListCompanyThanks(c *fiber.Ctx) error {
	page, err := s.feedService.ListCompanyFeed(c.UserContext(), slugParam(c), service.CompanyFeedQuery{
		Cursor:    c.Query("cursor"),
		Limit:     c.QueryInt("limit", 0),
		MediaType: c.Query("mediaType"),
		SortBy:    c.Query("sortBy"),
		ViewerID:  viewerID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// ApplyCompany handles POST /api/company-applications
func (s *Server) ApplyCompany(c *fiber.Ctx) error {
	var in service.CompanyApplicationInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	company, err := s.moderationService.ApplyCompany(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Application submitted and pending review",
		"company": company,
	})
}

// Search handles GET /api/search
func (s *Server) Search(c *fiber.Ctx) error {
	res, err := s.directoryService.CombinedSearch(c.UserContext(), service.SearchQuery{
		Q:        c.Query("q"),
		Page:     c.QueryInt("page", 1),
		Size:     c.QueryInt("size", 0),
		Take:     c.QueryInt("take", 0),
		Cursor:   c.Query("cursor"),
		ViewerID: viewerID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// TopCompanies handles GET /api/top/companies
func (s *Server) TopCompanies(c *fiber.Ctx) error {
	rows, err := s.directoryService.TopCompanies(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(rows)
}

// TopUsers handles GET /api/top/users
func (s *Server) TopUsers(c *fiber.Ctx) error {
	rows, err := s.directoryService.TopUsers(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(rows)
}

// FollowCompany handles POST /api/companies/:slug/follow
func (s *Server) FollowCompany(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	if err := s.followService.FollowCompany(c.UserContext(), userID, slugParam(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": true})
}

// UnfollowCompany handles DELETE /api/companies/:slug/follow
func (s *Server) UnfollowCompany(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	if err := s.followService.UnfollowCompany(c.UserContext(), userID, slugParam(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": false})
}

// GetCompanyFollow handles GET /api/companies/:slug/follow
func (s *Server) GetCompanyFollow(c *fiber.Ctx) error {
	following, err := s.followService.IsFollowingCompany(c.UserContext(), viewerID(c), slugParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": following})
}

func slugParam(c *fiber.Ctx) string {
	return strings.ToLower(strings.TrimSpace(c.Params("slug")))
}
