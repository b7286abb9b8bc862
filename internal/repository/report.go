package repository

import (
	"context"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, status models.ReportStatus, limit int) ([]models.Report, error)
	// Transition moves a PENDING report to status. A report in any other
	// state yields CONFLICT.
	Transition(ctx context.Context, id uint, status models.ReportStatus) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("you have already reported this thanks")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Preload("Thanks").
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) Transition(ctx context.Context, id uint, status models.ReportStatus) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", id, models.ReportPending).
			Update("status", status)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if err := tx.First(&report, id).Error; err != nil {
			return findErr(err, "Report", id)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("report has already been " + string(report.Status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
