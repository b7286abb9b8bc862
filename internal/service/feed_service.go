package service

import (
	"context"
	"strings"
	"time"

	"gratitude/internal/models"
	"gratitude/internal/observability"
	"gratitude/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Feed page sizes.
const (
	DefaultFeedTake = 20
	MaxFeedTake     = 50
)

// FeedQuery is the global feed request.
type FeedQuery struct {
	Mode        string
	CompanySlug string
	Media       string
	Q           string
	Take        int
	Cursor      string
	ViewerID    uint
}

type FeedPagination struct {
	NextCursor  string `json:"nextCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

type FeedPage struct {
	Thanks     []*models.ThanksView `json:"thanks"`
	Pagination FeedPagination       `json:"pagination"`
}

// CompanyFeedQuery is the company-scoped feed request. Cursor is a bare
// thanks id.
type CompanyFeedQuery struct {
	Cursor    string
	Limit     int
	MediaType string
	SortBy    string
	ViewerID  uint
}

type CompanyFeedPage struct {
	Items      []*models.ThanksView `json:"items"`
	NextCursor *string              `json:"nextCursor"`
	HasMore    bool                 `json:"hasMore"`
}

// FeedService serves the ranked, cursor-paginated thanks feeds.
type FeedService struct {
	thanksRepo  repository.ThanksRepository
	companyRepo repository.CompanyRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

func NewFeedService(
	thanksRepo repository.ThanksRepository,
	companyRepo repository.CompanyRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *FeedService {
	return &FeedService{thanksRepo: thanksRepo, companyRepo: companyRepo, isAdmin: isAdmin}
}

// clampTake treats zero as unset.
func clampTake(v int) int {
	if v == 0 {
		return DefaultFeedTake
	}
	if v < 1 {
		return 1
	}
	if v > MaxFeedTake {
		return MaxFeedTake
	}
	return v
}

func parseMode(mode string) (repository.FeedMode, error) {
	switch strings.ToLower(mode) {
	case "", string(repository.FeedLatest):
		return repository.FeedLatest, nil
	case string(repository.FeedPopular):
		return repository.FeedPopular, nil
	}
	return "", models.NewFieldError("mode", "mode must be latest or popular")
}

// ListFeed returns one page of the global feed.
func (s *FeedService) ListFeed(ctx context.Context, q FeedQuery) (page *FeedPage, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "feed.list", attribute.String("feed.mode", q.Mode))
	defer func() { observability.EndSpan(span, err) }()

	mode, err := parseMode(q.Mode)
	if err != nil {
		return nil, err
	}
	media := models.MediaNone
	if q.Media != "" {
		m, ok := models.ParseMediaType(q.Media)
		if !ok {
			return nil, models.NewFieldError("media", "media must be image or video")
		}
		media = m
	}
	take := clampTake(q.Take)

	filter := repository.FeedFilter{
		Mode:        mode,
		CompanySlug: strings.TrimSpace(q.CompanySlug),
		Media:       media,
		Search:      q.Q,
		Limit:       take + 1,
	}
	if q.Cursor != "" {
		createdAt, id, err := DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		key := &repository.FeedKey{CreatedAt: createdAt, ID: id}
		if mode == repository.FeedPopular {
			pos, err := s.thanksRepo.Position(ctx, id)
			if err != nil {
				if models.IsCode(err, models.CodeNotFound) {
					return nil, models.NewFieldError("cursor", "cursor expired")
				}
				return nil, err
			}
			key.LikeCount = pos.LikeCount
		}
		filter.After = key
	}

	start := time.Now()
	items, err := s.thanksRepo.ListFeed(ctx, filter)
	observability.FeedQueryLatency.WithLabelValues("global", string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	hasNext := len(items) > take
	if hasNext {
		items = items[:take]
	}
	views, err := hydrate(ctx, s.thanksRepo, items, q.ViewerID)
	if err != nil {
		return nil, err
	}

	page = &FeedPage{Thanks: views, Pagination: FeedPagination{HasNextPage: hasNext}}
	if hasNext {
		last := items[len(items)-1]
		page.Pagination.NextCursor = EncodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// ListCompanyFeed returns one page of an approved company's thanks.
func (s *FeedService) ListCompanyFeed(ctx context.Context, slug string, q CompanyFeedQuery) (*CompanyFeedPage, error) {
	var mode repository.FeedMode
	switch strings.ToLower(q.SortBy) {
	case "", "recent":
		mode = repository.FeedLatest
	case "popular":
		mode = repository.FeedPopular
	default:
		return nil, models.NewFieldError("sortBy", "sortBy must be recent or popular")
	}

	media := models.MediaNone
	switch strings.ToLower(q.MediaType) {
	case "", "all":
	default:
		m, ok := models.ParseMediaType(strings.ToLower(q.MediaType))
		if !ok {
			return nil, models.NewFieldError("mediaType", "mediaType must be image, video or all")
		}
		media = m
	}
	limit := clampTake(q.Limit)

	company, err := s.companyRepo.GetApprovedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	filter := repository.FeedFilter{
		Mode:      mode,
		CompanyID: company.ID,
		Media:     media,
		Limit:     limit + 1,
	}
	if q.Cursor != "" {
		id, err := ParseIDCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		pos, err := s.thanksRepo.Position(ctx, id)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return nil, models.NewFieldError("cursor", "cursor expired")
			}
			return nil, err
		}
		if pos.CompanyID == nil || *pos.CompanyID != company.ID {
			return nil, models.NewFieldError("cursor", "cursor does not belong to this company")
		}
		filter.After = &repository.FeedKey{LikeCount: pos.LikeCount, CreatedAt: pos.CreatedAt, ID: pos.ID}
	}

	start := time.Now()
	items, err := s.thanksRepo.ListFeed(ctx, filter)
	observability.FeedQueryLatency.WithLabelValues("company", string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	views, err := hydrate(ctx, s.thanksRepo, items, q.ViewerID)
	if err != nil {
		return nil, err
	}

	page := &CompanyFeedPage{Items: views, HasMore: hasMore}
	if hasMore {
		next := EncodeIDCursor(items[len(items)-1].ID)
		page.NextCursor = &next
	}
	return page, nil
}

// GetThanks returns a single thanks. Unapproved thanks are visible only to
// their author and to admins.
func (s *FeedService) GetThanks(ctx context.Context, id, viewerID uint) (*models.ThanksView, error) {
	t, err := s.thanksRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsApproved {
		visible := viewerID != 0 && viewerID == t.AuthorID
		if !visible && viewerID != 0 && s.isAdmin != nil {
			admin, err := s.isAdmin(ctx, viewerID)
			if err != nil {
				return nil, err
			}
			visible = admin
		}
		if !visible {
			return nil, models.NewNotFoundError("Thanks", id)
		}
	}
	views, err := hydrate(ctx, s.thanksRepo, []models.Thanks{*t}, viewerID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// hydrate renders items with approved comment counts and the viewer's likes.
func hydrate(ctx context.Context, repo repository.ThanksRepository, items []models.Thanks, viewerID uint) ([]*models.ThanksView, error) {
	views := make([]*models.ThanksView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}
	ids := make([]uint, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	counts, err := repo.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := repo.LikedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		views = append(views, items[i].View(counts[items[i].ID], liked[items[i].ID]))
	}
	return views, nil
}
