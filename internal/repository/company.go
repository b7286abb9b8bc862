package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	// GetApprovedBySlug hides unapproved companies behind NOT_FOUND.
	GetApprovedBySlug(ctx context.Context, slug string) (*models.Company, error)
	Search(ctx context.Context, q string, page, size int) ([]models.Company, int64, error)
	NameOrSlugTaken(ctx context.Context, name, slug string) (bool, error)
	Create(ctx context.Context, company *models.Company) error
	Stats(ctx context.Context, id uint, since time.Time) (models.CompanyStats, error)
	TopCompanies(ctx context.Context, since time.Time, limit int) ([]models.TopCompany, error)
	Approve(ctx context.Context, id uint) (*models.Company, error)
	Delete(ctx context.Context, id uint) (*models.Company, error)
	ListPending(ctx context.Context, limit int) ([]models.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a new CompanyRepository implementation.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	if err := readDB(r.db).WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, findErr(err, "Company", id)
	}
	return &c, nil
}

func (r *companyRepository) GetApprovedBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var c models.Company
	err := readDB(r.db).WithContext(ctx).
		Where("slug = ? AND is_approved = ?", slug, true).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("company not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &c, nil
}

// Search lists approved companies whose name, slug or category contains q,
// ordered by name. page is 1-based.
func (r *companyRepository) Search(ctx context.Context, q string, page, size int) ([]models.Company, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.Company{}).Where("is_approved = ?", true)
	if strings.TrimSpace(q) != "" {
		p := containsPattern(q)
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(slug) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\'`,
			p, p, p,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var companies []models.Company
	if err := query.Order("name ASC, id ASC").Offset((page - 1) * size).Limit(size).Find(&companies).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return companies, total, nil
}

func (r *companyRepository) NameOrSlugTaken(ctx context.Context, name, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("LOWER(name) = ? OR slug = ?", strings.ToLower(strings.TrimSpace(name)), slug).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// Create inserts company. A racing insert that hits the unique slug or name
// index is reported as CONFLICT.
func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("a company with this name already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *companyRepository) Stats(ctx context.Context, id uint, since time.Time) (models.CompanyStats, error) {
	var s models.CompanyStats
	base := readDB(r.db).WithContext(ctx).Model(&models.Thanks{}).
		Where("company_id = ? AND is_approved = ?", id, true).
		Session(&gorm.Session{})
	if err := base.Count(&s.TotalThanks).Error; err != nil {
		return s, models.NewInternalError(err)
	}
	if err := base.Where("created_at >= ?", since).Count(&s.RecentThanks).Error; err != nil {
		return s, models.NewInternalError(err)
	}
	return s, nil
}

type topCompanyRow struct {
	ID          uint
	Name        string
	Slug        string
	LogoURL     string
	ThanksCount int64
	TotalLikes  int64
	LastThanks  string
}

// TopCompanies ranks approved companies by approved thanks received since
// the given time.
func (r *companyRepository) TopCompanies(ctx context.Context, since time.Time, limit int) ([]models.TopCompany, error) {
	var rows []topCompanyRow
	err := readDB(r.db).WithContext(ctx).
		Table("thanks").
		Select("companies.id AS id, companies.name AS name, companies.slug AS slug, companies.logo_url AS logo_url, "+
			"COUNT(thanks.id) AS thanks_count, COALESCE(SUM(thanks.like_count), 0) AS total_likes, "+
			"MAX(thanks.created_at) AS last_thanks").
		Joins("JOIN companies ON companies.id = thanks.company_id").
		Where("thanks.is_approved = ? AND companies.is_approved = ? AND thanks.created_at >= ?", true, true, since).
		Group("companies.id, companies.name, companies.slug, companies.logo_url").
		Order("thanks_count DESC, total_likes DESC, companies.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make([]models.TopCompany, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.TopCompany{
			ID:             row.ID,
			Name:           row.Name,
			Slug:           row.Slug,
			LogoURL:        row.LogoURL,
			ThanksCount:    row.ThanksCount,
			TotalLikes:     row.TotalLikes,
			LastThanksDate: dbTime(row.LastThanks),
		})
	}
	return out, nil
}

func (r *companyRepository) Approve(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		c.IsApproved = true
		return tx.Model(&c).Update("is_approved", true).Error
	})
	if err != nil {
		return nil, findErr(err, "Company", id)
	}
	return &c, nil
}

// Delete removes a company together with its thanks and everything hanging
// off them.
func (r *companyRepository) Delete(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		thanksIDs := tx.Model(&models.Thanks{}).Select("id").Where("company_id = ?", id)
		if err := deleteThanksChildren(tx, thanksIDs); err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Thanks{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.FollowCompany{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
	if err != nil {
		return nil, findErr(err, "Company", id)
	}
	return &c, nil
}

func (r *companyRepository) ListPending(ctx context.Context, limit int) ([]models.Company, error) {
	var companies []models.Company
	err := readDB(r.db).WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&companies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return companies, nil
}
