package service

import (
	"context"

	"gratitude/internal/models"
	"gratitude/internal/repository"
)

// FollowService manages follow edges to users and companies.
type FollowService struct {
	followRepo  repository.FollowRepository
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, companyRepo: companyRepo}
}

func (s *FollowService) FollowUser(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.followRepo.FollowUser(ctx, followerID, targetID)
}

// UnfollowUser is idempotent.
func (s *FollowService) UnfollowUser(ctx context.Context, followerID, targetID uint) error {
	_, err := s.followRepo.UnfollowUser(ctx, followerID, targetID)
	return err
}

// IsFollowingUser is false for anonymous viewers.
func (s *FollowService) IsFollowingUser(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	return s.followRepo.IsFollowingUser(ctx, followerID, targetID)
}

func (s *FollowService) FollowCompany(ctx context.Context, userID uint, slug string) error {
	company, err := s.companyRepo.GetApprovedBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.followRepo.FollowCompany(ctx, userID, company.ID)
}

func (s *FollowService) UnfollowCompany(ctx context.Context, userID uint, slug string) error {
	company, err := s.companyRepo.GetApprovedBySlug(ctx, slug)
	if err != nil {
		return err
	}
	_, err = s.followRepo.UnfollowCompany(ctx, userID, company.ID)
	return err
}

func (s *FollowService) IsFollowingCompany(ctx context.Context, userID uint, slug string) (bool, error) {
	company, err := s.companyRepo.GetApprovedBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.IsFollowingCompany(ctx, userID, company.ID)
}
