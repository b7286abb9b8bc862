package repository

import (
	"context"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// AdminRepository aggregates dashboard counters.
type AdminRepository interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository returns a new AdminRepository implementation.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Stats(ctx context.Context) (*models.AdminStats, error) {
	var s models.AdminStats
	db := readDB(r.db).WithContext(ctx)
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.Users, db.Model(&models.User{})},
		{&s.Companies, db.Model(&models.Company{})},
		{&s.Thanks, db.Model(&models.Thanks{})},
		{&s.Comments, db.Model(&models.Comment{})},
		{&s.PendingReports, db.Model(&models.Report{}).Where("status = ?", models.ReportPending)},
		{&s.PendingThanks, db.Model(&models.Thanks{}).Where("is_approved = ?", false)},
		{&s.PendingComments, db.Model(&models.Comment{}).Where("is_approved = ?", false)},
		{&s.PendingCompanies, db.Model(&models.Company{}).Where("is_approved = ?", false)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return &s, nil
}
