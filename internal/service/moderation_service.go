package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"gratitude/internal/cache"
	"gratitude/internal/middleware"
	"gratitude/internal/models"
	"gratitude/internal/observability"
	"gratitude/internal/repository"
	"gratitude/internal/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// Moderation limits and defaults.
const (
	QueueLimit      = 50
	ReportListLimit = 100
	DefaultCategory = "Other"
	minPhoneDigits  = 10
)

// Moderated entities.
const (
	EntityThanks    = "thanks"
	EntityComments  = "comments"
	EntityCompanies = "companies"
)

// Moderation actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionResolve = "resolve"
	ActionDismiss = "dismiss"
)

// ModerationQueue lists everything waiting for an admin decision.
type ModerationQueue struct {
	Thanks    []*models.ThanksView  `json:"thanks"`
	Comments  []*models.CommentView `json:"comments"`
	Companies []models.Company      `json:"companies"`
}

// CompanyApplicationInput is the public company application form.
type CompanyApplicationInput struct {
	CompanyName string `json:"companyName" validate:"required,min=2,max=100"`
	ContactName string `json:"contactName" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" validate:"required,max=30"`
	Email       string `json:"email" validate:"required,email"`
}

// ModerationService provides admin moderation and the company application
// intake.
type ModerationService struct {
	thanksRepo  repository.ThanksRepository
	commentRepo repository.CommentRepository
	companyRepo repository.CompanyRepository
	reportRepo  repository.ReportRepository
	adminRepo   repository.AdminRepository
	rdb         *redis.Client
	now         func() time.Time
}

// NewModerationService returns a new ModerationService. rdb may be nil.
func NewModerationService(
	thanksRepo repository.ThanksRepository,
	commentRepo repository.CommentRepository,
	companyRepo repository.CompanyRepository,
	reportRepo repository.ReportRepository,
	adminRepo repository.AdminRepository,
	rdb *redis.Client,
) *ModerationService {
	return &ModerationService{
		thanksRepo:  thanksRepo,
		commentRepo: commentRepo,
		companyRepo: companyRepo,
		reportRepo:  reportRepo,
		adminRepo:   adminRepo,
		rdb:         rdb,
		now:         time.Now,
	}
}

func parseModerationAction(action string) (string, error) {
	switch a := strings.ToLower(strings.TrimSpace(action)); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", models.NewFieldError("action", "action must be approve or reject")
}

// Moderate approves or rejects (deletes) an entity.
func (s *ModerationService) Moderate(ctx context.Context, entity string, id uint, action string) error {
	action, err := parseModerationAction(action)
	if err != nil {
		return err
	}

	switch entity {
	case EntityThanks:
		err = s.moderateThanks(ctx, id, action)
	case EntityComments:
		err = s.moderateComment(ctx, id, action)
	case EntityCompanies:
		err = s.moderateCompany(ctx, id, action)
	default:
		return models.NewValidationError("unknown moderation entity")
	}
	if err != nil {
		return err
	}

	observability.ModerationActions.WithLabelValues(entity, action).Inc()
	middleware.Logger.InfoContext(ctx, "moderation decision",
		slog.String("entity", entity),
		slog.Uint64("id", uint64(id)),
		slog.String("action", action),
	)
	return nil
}

func (s *ModerationService) moderateThanks(ctx context.Context, id uint, action string) error {
	var slug string
	if action == ActionApprove {
		t, err := s.thanksRepo.Approve(ctx, id)
		if err != nil {
			return err
		}
		if t.Company != nil {
			slug = t.Company.Slug
		}
	} else {
		t, err := s.thanksRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t.Company != nil {
			slug = t.Company.Slug
		}
		if err := s.thanksRepo.Delete(ctx, id); err != nil {
			return err
		}
	}

	// Company stats and top lists count approved thanks.
	if slug != "" {
		cache.InvalidateCompany(ctx, s.rdb, slug)
	}
	cache.InvalidateTopLists(ctx, s.rdb)
	return nil
}

func (s *ModerationService) moderateComment(ctx context.Context, id uint, action string) error {
	if action == ActionApprove {
		_, err := s.commentRepo.Approve(ctx, id)
		return err
	}
	return s.commentRepo.Delete(ctx, id)
}

func (s *ModerationService) moderateCompany(ctx context.Context, id uint, action string) error {
	var (
		company *models.Company
		err     error
	)
	if action == ActionApprove {
		company, err = s.companyRepo.Approve(ctx, id)
	} else {
		company, err = s.companyRepo.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	cache.InvalidateCompany(ctx, s.rdb, company.Slug)
	cache.InvalidateTopLists(ctx, s.rdb)
	return nil
}

func (s *ModerationService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.adminRepo.Stats(ctx)
}

// Queue returns the most recent pending thanks, comments and companies.
func (s *ModerationService) Queue(ctx context.Context) (*ModerationQueue, error) {
	thanks, err := s.thanksRepo.ListPending(ctx, QueueLimit)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListPending(ctx, QueueLimit)
	if err != nil {
		return nil, err
	}
	companies, err := s.companyRepo.ListPending(ctx, QueueLimit)
	if err != nil {
		return nil, err
	}

	q := &ModerationQueue{
		Thanks:    make([]*models.ThanksView, 0, len(thanks)),
		Comments:  make([]*models.CommentView, 0, len(comments)),
		Companies: companies,
	}
	if q.Companies == nil {
		q.Companies = []models.Company{}
	}
	for i := range thanks {
		q.Thanks = append(q.Thanks, thanks[i].View(0, false))
	}
	for i := range comments {
		q.Comments = append(q.Comments, comments[i].View())
	}
	return q, nil
}

// ListReports returns reports in status, PENDING when empty.
func (s *ModerationService) ListReports(ctx context.Context, status string) ([]models.Report, error) {
	st := models.ReportStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case "":
		st = models.ReportPending
	case models.ReportPending, models.ReportResolved, models.ReportDismissed:
	default:
		return nil, models.NewFieldError("status", "status must be PENDING, RESOLVED or DISMISSED")
	}
	reports, err := s.reportRepo.List(ctx, st, ReportListLimit)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// HandleReport resolves or dismisses a pending report.
func (s *ModerationService) HandleReport(ctx context.Context, id uint, action string) (*models.Report, error) {
	var status models.ReportStatus
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionResolve:
		status = models.ReportResolved
	case ActionDismiss:
		status = models.ReportDismissed
	default:
		return nil, models.NewFieldError("action", "action must be resolve or dismiss")
	}
	report, err := s.reportRepo.Transition(ctx, id, status)
	if err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("reports", strings.ToLower(action)).Inc()
	return report, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// ApplyCompany records a company application. The company stays hidden
// until an admin approves it.
func (s *ModerationService) ApplyCompany(ctx context.Context, in CompanyApplicationInput) (*models.Company, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if countDigits(in.Phone) < minPhoneDigits {
		return nil, models.NewFieldError("phone", "phone must contain at least 10 digits")
	}

	slug := validation.Slugify(in.CompanyName)
	if slug == "" {
		return nil, models.NewFieldError("companyName", "company name must contain letters or digits")
	}
	taken, err := s.companyRepo.NameOrSlugTaken(ctx, in.CompanyName, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("A company with this name already exists")
	}

	data := datatypes.NewJSONType(models.ApplicationData{
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Email:       in.Email,
		AppliedAt:   s.now().UTC(),
	})
	company := &models.Company{
		Name:            in.CompanyName,
		Slug:            slug,
		Category:        DefaultCategory,
		IsApproved:      false,
		ApplicationData: &data,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "company application received",
		slog.Uint64("company_id", uint64(company.ID)),
		slog.String("slug", slug),
	)
	return company, nil
}
