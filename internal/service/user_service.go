package service

import (
	"context"
	"strings"

	"gratitude/internal/models"
	"gratitude/internal/repository"
	"gratitude/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is a partial profile update; nil fields are left as is.
type UpdateProfileInput struct {
	UserID     uint    `json:"-"`
	Name       *string `json:"name" validate:"omitempty,min=2,max=100"`
	Image      *string `json:"image" validate:"omitempty,url"`
	Bio        *string `json:"bio" validate:"omitempty,max=500"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	Website    *string `json:"website" validate:"omitempty,url"`
	UserType   *string `json:"userType" validate:"omitempty,max=50"`
	Profession *string `json:"profession" validate:"omitempty,max=100"`
	WorkArea   *string `json:"workArea" validate:"omitempty,max=100"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// PublicProfile returns a user's public page with follow and thanks counts.
func (s *UserService) PublicProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	return s.userRepo.Profile(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := []struct {
		column string
		value  *string
	}{
		{"name", in.Name},
		{"image", in.Image},
		{"bio", in.Bio},
		{"phone", in.Phone},
		{"location", in.Location},
		{"website", in.Website},
		{"user_type", in.UserType},
		{"profession", in.Profession},
		{"work_area", in.WorkArea},
	}
	for _, f := range fields {
		if f.value != nil {
			*f.value = strings.TrimSpace(*f.value)
		}
	}
	if in.Name != nil && *in.Name == "" {
		return nil, models.NewFieldError("name", "name is required")
	}
	// An empty URL clears the field.
	check := in
	if check.Image != nil && *check.Image == "" {
		check.Image = nil
	}
	if check.Website != nil && *check.Website == "" {
		check.Website = nil
	}
	if err := validation.Struct(check); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	for _, f := range fields {
		if f.value != nil {
			updates[f.column] = *f.value
		}
	}
	return s.userRepo.Update(ctx, in.UserID, updates)
}
