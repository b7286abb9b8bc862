package service

import (
	"context"
	"strings"
	"time"

	"gratitude/internal/cache"
	"gratitude/internal/models"
	"gratitude/internal/repository"
	"gratitude/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Directory defaults.
const (
	DefaultDirectoryPageSize = 20
	MaxDirectoryPageSize     = 100
	TopListLimit             = 10
	StatsWindow              = 30 * 24 * time.Hour
)

type CompanyPage struct {
	Companies  []models.Company `json:"companies"`
	Pagination Pagination       `json:"pagination"`
}

// CreateCompanyInput is the body of POST /api/companies.
type CreateCompanyInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Category string `json:"category" validate:"required,min=1,max=50"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
}

// SearchQuery drives the combined company and thanks search.
type SearchQuery struct {
	Q        string
	Page     int
	Size     int
	Take     int
	Cursor   string
	ViewerID uint
}

type SearchResult struct {
	Companies *CompanyPage `json:"companies"`
	Thanks    *FeedPage    `json:"thanks"`
}

// DirectoryService serves the company directory and the top lists.
type DirectoryService struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	feed        *FeedService
	rdb         *redis.Client
	now         func() time.Time
}

// NewDirectoryService returns a DirectoryService. rdb may be nil, in which
// case nothing is cached.
func NewDirectoryService(
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
	feed *FeedService,
	rdb *redis.Client,
) *DirectoryService {
	return &DirectoryService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		feed:        feed,
		rdb:         rdb,
		now:         time.Now,
	}
}

// publicCompany drops the application contact details.
func publicCompany(c models.Company) models.Company {
	c.ApplicationData = nil
	return c
}

// Search lists approved companies matching q by name, slug or category.
func (s *DirectoryService) Search(ctx context.Context, q string, page, size int) (*CompanyPage, error) {
	page, size = normalizePage(page, size, DefaultDirectoryPageSize, MaxDirectoryPageSize)
	companies, total, err := s.companyRepo.Search(ctx, strings.TrimSpace(q), page, size)
	if err != nil {
		return nil, err
	}
	out := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		out = append(out, publicCompany(c))
	}
	return &CompanyPage{Companies: out, Pagination: newPagination(page, size, total)}, nil
}

// CreateCompany adds an approved company on behalf of a signed-in user.
func (s *DirectoryService) CreateCompany(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	slug := validation.Slugify(in.Name)
	if slug == "" {
		return nil, models.NewFieldError("name", "name must contain letters or digits")
	}
	taken, err := s.companyRepo.NameOrSlugTaken(ctx, in.Name, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("A company with this name already exists")
	}

	company := &models.Company{
		Name:       in.Name,
		Slug:       slug,
		LogoURL:    in.LogoURL,
		Category:   in.Category,
		IsApproved: true,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	cache.InvalidateTopLists(ctx, s.rdb)
	return company, nil
}

// GetCompany returns an approved company with its thanks stats.
func (s *DirectoryService) GetCompany(ctx context.Context, slug string) (*models.CompanyDetail, error) {
	return cache.Aside(ctx, s.rdb, cache.CacheCompany, cache.CompanyKey(slug), cache.CompanyTTL,
		func(ctx context.Context) (*models.CompanyDetail, error) {
			company, err := s.companyRepo.GetApprovedBySlug(ctx, slug)
			if err != nil {
				return nil, err
			}
			stats, err := s.companyRepo.Stats(ctx, company.ID, s.now().Add(-StatsWindow))
			if err != nil {
				return nil, err
			}
			return &models.CompanyDetail{Company: publicCompany(*company), Stats: stats}, nil
		})
}

// CombinedSearch runs the directory search and the thanks feed search
// concurrently.
func (s *DirectoryService) CombinedSearch(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	var res SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.Search(gctx, q.Q, q.Page, q.Size)
		res.Companies = page
		return err
	})
	g.Go(func() error {
		page, err := s.feed.ListFeed(gctx, FeedQuery{
			Q:        q.Q,
			Take:     q.Take,
			Cursor:   q.Cursor,
			ViewerID: q.ViewerID,
		})
		res.Thanks = page
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// TopCompanies ranks companies by approved thanks in the last 30 days.
func (s *DirectoryService) TopCompanies(ctx context.Context) ([]models.TopCompany, error) {
	return cache.Aside(ctx, s.rdb, cache.CacheTopLists, cache.TopCompaniesKeyFor(TopListLimit), cache.TopListTTL,
		func(ctx context.Context) ([]models.TopCompany, error) {
			rows, err := s.companyRepo.TopCompanies(ctx, s.now().Add(-StatsWindow), TopListLimit)
			if rows == nil && err == nil {
				rows = []models.TopCompany{}
			}
			return rows, err
		})
}

// TopUsers ranks users by likes received on their approved thanks in the
// last 30 days.
func (s *DirectoryService) TopUsers(ctx context.Context) ([]models.TopUser, error) {
	return cache.Aside(ctx, s.rdb, cache.CacheTopLists, cache.TopUsersKeyFor(TopListLimit), cache.TopListTTL,
		func(ctx context.Context) ([]models.TopUser, error) {
			rows, err := s.userRepo.TopUsers(ctx, s.now().Add(-StatsWindow), TopListLimit)
			if rows == nil && err == nil {
				rows = []models.TopUser{}
			}
			return rows, err
		})
}
