package service

import (
	"context"

	"gratitude/internal/models"
	"gratitude/internal/observability"
	"gratitude/internal/repository"
)

// EngagementService toggles likes.
type EngagementService struct {
	likeRepo repository.LikeRepository
}

func NewEngagementService(likeRepo repository.LikeRepository) *EngagementService {
	return &EngagementService{likeRepo: likeRepo}
}

// ToggleLike flips userID's like on an approved thanks and returns the
// resulting state with the committed counter.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, thanksID uint) (res *models.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "like.toggle")
	defer func() { observability.EndSpan(span, err) }()

	res, err = s.likeRepo.Toggle(ctx, userID, thanksID)
	if err != nil {
		return nil, err
	}
	result := "unliked"
	if res.Liked {
		result = "liked"
	}
	observability.LikeToggles.WithLabelValues(result).Inc()
	return res, nil
}
