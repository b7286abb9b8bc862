package service

import (
	"context"
	"strings"

	"gratitude/internal/models"
	"gratitude/internal/observability"
	"gratitude/internal/repository"
	"gratitude/internal/validation"
)

// ThanksService owns the thanks lifecycle: create, edit, delete and report.
type ThanksService struct {
	thanksRepo  repository.ThanksRepository
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	reportRepo  repository.ReportRepository
}

// CreateThanksInput is the body of POST /api/thanks. Exactly one of
// CompanyID and TargetUserID must be set.
type CreateThanksInput struct {
	AuthorID     uint   `json:"-"`
	CompanyID    *uint  `json:"companyId"`
	TargetUserID *uint  `json:"targetUserId"`
	Text         string `json:"text"`
	MediaURL     string `json:"mediaUrl" validate:"omitempty,url,max=2048"`
	MediaType    string `json:"mediaType" validate:"omitempty,oneof=image video"`
}

// UpdateThanksInput is the body of PATCH /api/thanks/:id.
type UpdateThanksInput struct {
	UserID    uint   `json:"-"`
	ThanksID  uint   `json:"-"`
	Text      string `json:"text"`
	MediaURL  string `json:"mediaUrl" validate:"omitempty,url,max=2048"`
	MediaType string `json:"mediaType" validate:"omitempty,oneof=image video"`
}

func NewThanksService(
	thanksRepo repository.ThanksRepository,
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
	reportRepo repository.ReportRepository,
) *ThanksService {
	return &ThanksService{
		thanksRepo:  thanksRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		reportRepo:  reportRepo,
	}
}

// validateMedia checks that url and type are given together.
func validateMedia(mediaURL, mediaType string) (string, models.MediaType, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" && mediaType == "" {
		return "", models.MediaNone, nil
	}
	if mediaURL == "" {
		return "", "", models.NewFieldError("mediaUrl", "mediaUrl is required when mediaType is set")
	}
	mt, ok := models.ParseMediaType(mediaType)
	if !ok {
		return "", "", models.NewFieldError("mediaType", "mediaType must be image or video")
	}
	return mediaURL, mt, nil
}

func (s *ThanksService) CreateThanks(ctx context.Context, in CreateThanksInput) (*models.ThanksView, error) {
	text, err := validation.ThanksText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	mediaURL, mediaType, err := validateMedia(in.MediaURL, in.MediaType)
	if err != nil {
		return nil, err
	}

	var target models.Target
	switch {
	case in.CompanyID != nil && in.TargetUserID == nil:
		target = models.CompanyTarget(*in.CompanyID)
	case in.TargetUserID != nil && in.CompanyID == nil:
		target = models.UserTarget(*in.TargetUserID)
	default:
		return nil, models.NewFieldError("target", "exactly one of companyId or targetUserId is required")
	}
	if !target.Valid() {
		return nil, models.NewFieldError("target", "target id is invalid")
	}

	switch target.Kind {
	case models.TargetCompany:
		company, err := s.companyRepo.GetByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		if !company.IsApproved {
			return nil, models.NewNotFoundError("Company", target.ID)
		}
	case models.TargetUser:
		if target.ID == in.AuthorID {
			return nil, models.NewFieldError("targetUserId", "you cannot thank yourself")
		}
		if _, err := s.userRepo.GetByID(ctx, target.ID); err != nil {
			return nil, err
		}
	}

	t := &models.Thanks{
		Text:      text,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		AuthorID:  in.AuthorID,
	}
	if err := t.SetTarget(target); err != nil {
		return nil, models.NewFieldError("target", err.Error())
	}
	if err := s.thanksRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	observability.ThanksCreated.WithLabelValues(string(target.Kind)).Inc()

	created, err := s.thanksRepo.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return created.View(0, false), nil
}

// ownedThanks loads a thanks and checks that userID wrote it.
func (s *ThanksService) ownedThanks(ctx context.Context, userID, id uint) (*models.Thanks, error) {
	t, err := s.thanksRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only modify your own thanks")
	}
	return t, nil
}

// UpdateThanks replaces text and media. The edit goes back to moderation.
func (s *ThanksService) UpdateThanks(ctx context.Context, in UpdateThanksInput) (*models.ThanksView, error) {
	if _, err := s.ownedThanks(ctx, in.UserID, in.ThanksID); err != nil {
		return nil, err
	}
	text, err := validation.ThanksText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	mediaURL, mediaType, err := validateMedia(in.MediaURL, in.MediaType)
	if err != nil {
		return nil, err
	}

	updated, err := s.thanksRepo.UpdateContent(ctx, in.ThanksID, text, mediaURL, mediaType)
	if err != nil {
		return nil, err
	}
	counts, err := s.thanksRepo.CommentCounts(ctx, []uint{updated.ID})
	if err != nil {
		return nil, err
	}
	liked, err := s.thanksRepo.LikedBy(ctx, in.UserID, []uint{updated.ID})
	if err != nil {
		return nil, err
	}
	return updated.View(counts[updated.ID], liked[updated.ID]), nil
}

func (s *ThanksService) DeleteThanks(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedThanks(ctx, userID, id); err != nil {
		return err
	}
	return s.thanksRepo.Delete(ctx, id)
}

// approvedThanks returns NOT_FOUND for missing and unapproved thanks alike,
// so pending content stays invisible to engagement endpoints.
func approvedThanks(ctx context.Context, repo repository.ThanksRepository, id uint) (*models.Thanks, error) {
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsApproved {
		return nil, models.NewNotFoundError("Thanks", id)
	}
	return t, nil
}

// ReportThanks files a report on an approved thanks. A user may report a
// thanks once.
func (s *ThanksService) ReportThanks(ctx context.Context, userID, thanksID uint, reason string) (*models.Report, error) {
	if _, err := approvedThanks(ctx, s.thanksRepo, thanksID); err != nil {
		return nil, err
	}
	reason, err := validation.ReportReason(reason)
	if err != nil {
		return nil, err
	}
	report := &models.Report{UserID: userID, ThanksID: thanksID, Reason: reason}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	observability.ReportsFiled.Inc()
	return report, nil
}
