package service

import (
	"context"
	"fmt"
	"log/slog"

	"gratitude/internal/middleware"
	"gratitude/internal/models"
	"gratitude/internal/observability"
	"gratitude/internal/ratelimit"
	"gratitude/internal/repository"
	"gratitude/internal/validation"
)

// Comment page sizes.
const (
	DefaultCommentPageSize = 20
	MaxCommentPageSize     = 100
)

type CommentService struct {
	commentRepo repository.CommentRepository
	thanksRepo  repository.ThanksRepository
	limiter     ratelimit.Limiter
}

type CreateCommentInput struct {
	UserID   uint
	ThanksID uint
	Text     string
}

// Pagination is the offset pagination block shared by paged listings.
type Pagination struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page, size int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
	}
}

// normalizePage clamps page to >=1 and size to [1,max], using def for
// non-positive sizes.
func normalizePage(page, size, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size
}

type CommentPage struct {
	Comments   []*models.CommentView `json:"comments"`
	Pagination Pagination            `json:"pagination"`
}

// NewCommentService wires the comment flow. A nil limiter disables the
// per-user comment rate limit.
func NewCommentService(
	commentRepo repository.CommentRepository,
	thanksRepo repository.ThanksRepository,
	limiter ratelimit.Limiter,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		thanksRepo:  thanksRepo,
		limiter:     limiter,
	}
}

func (s *CommentService) approvedThanks(ctx context.Context, id uint) error {
	_, err := approvedThanks(ctx, s.thanksRepo, id)
	return err
}

// checkLimit applies the comment policy. Store errors fail open.
func (s *CommentService) checkLimit(ctx context.Context, userID uint) error {
	if s.limiter == nil {
		return nil
	}
	action := ratelimit.ActionCommentCreate
	res, err := s.limiter.Check(ctx, fmt.Sprintf("user:%d", userID), action, ratelimit.CommentCreate)
	if err != nil {
		middleware.RateLimitStoreErrors.WithLabelValues(action).Inc()
		middleware.Logger.WarnContext(ctx, "rate limit store unavailable, failing open",
			slog.String("action", action), slog.String("error", err.Error()))
		return nil
	}
	if !res.Success {
		middleware.RateLimited.WithLabelValues(action).Inc()
		return models.NewQuotaExceededError(res.Limit, res.Remaining, res.ResetAt)
	}
	return nil
}

// CreateComment stores a pending comment on an approved thanks.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	if err := s.approvedThanks(ctx, in.ThanksID); err != nil {
		return nil, err
	}

	if err := s.checkLimit(ctx, in.UserID); err != nil {
		return nil, err
	}

	text, err := validation.CommentText(in.Text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		UserID:   in.UserID,
		ThanksID: in.ThanksID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()
	return comment.View(), nil
}

// ListComments returns approved comments on an approved thanks, oldest first.
func (s *CommentService) ListComments(ctx context.Context, thanksID uint, page, size int) (*CommentPage, error) {
	if err := s.approvedThanks(ctx, thanksID); err != nil {
		return nil, err
	}
	page, size = normalizePage(page, size, DefaultCommentPageSize, MaxCommentPageSize)

	comments, total, err := s.commentRepo.ListApproved(ctx, thanksID, page, size)
	if err != nil {
		return nil, err
	}
	views := make([]*models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	return &CommentPage{Comments: views, Pagination: newPagination(page, size, total)}, nil
}
