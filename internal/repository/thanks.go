package repository

import (
	"context"
	"strings"
	"time"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// FeedMode selects the feed ordering.
type FeedMode string

const (
	// FeedLatest orders by created_at DESC, id DESC.
	FeedLatest FeedMode = "latest"
	// FeedPopular orders by like_count DESC, created_at DESC, id DESC.
	FeedPopular FeedMode = "popular"
)

// FeedKey is a row's position in feed order. LikeCount is only used in
// popular mode.
type FeedKey struct {
	LikeCount int
	CreatedAt time.Time
	ID        uint
}

// FeedFilter narrows and positions a feed query. Only approved thanks are
// ever returned.
type FeedFilter struct {
	Mode        FeedMode
	CompanyID   uint
	CompanySlug string
	Media       models.MediaType
	Search      string
	After       *FeedKey
	Limit       int
}

// ThanksRepository defines persistence operations for thanks.
type ThanksRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Thanks, error)
	Create(ctx context.Context, t *models.Thanks) error
	UpdateContent(ctx context.Context, id uint, text, mediaURL string, mediaType models.MediaType) (*models.Thanks, error)
	Delete(ctx context.Context, id uint) error
	ListFeed(ctx context.Context, f FeedFilter) ([]models.Thanks, error)
	// Position loads only the columns that place a row in feed order.
	Position(ctx context.Context, id uint) (*models.Thanks, error)
	CommentCounts(ctx context.Context, ids []uint) (map[uint]int64, error)
	LikedBy(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error)
	Approve(ctx context.Context, id uint) (*models.Thanks, error)
	ApproveAll(ctx context.Context) (int64, error)
	ListPending(ctx context.Context, limit int) ([]models.Thanks, error)
}

type thanksRepository struct {
	db *gorm.DB
}

// NewThanksRepository returns a new ThanksRepository implementation.
func NewThanksRepository(db *gorm.DB) ThanksRepository {
	return &thanksRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Company").Preload("TargetUser")
}

func (r *thanksRepository) GetByID(ctx context.Context, id uint) (*models.Thanks, error) {
	var t models.Thanks
	if err := withRelations(readDB(r.db).WithContext(ctx)).First(&t, id).Error; err != nil {
		return nil, findErr(err, "Thanks", id)
	}
	return &t, nil
}

func (r *thanksRepository) Create(ctx context.Context, t *models.Thanks) error {
	if _, err := t.Target(); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateContent rewrites the body and media and sends the thanks back to
// moderation.
func (r *thanksRepository) UpdateContent(ctx context.Context, id uint, text, mediaURL string, mediaType models.MediaType) (*models.Thanks, error) {
	res := r.db.WithContext(ctx).Model(&models.Thanks{}).Where("id = ?", id).Updates(map[string]interface{}{
		"text":        text,
		"media_url":   mediaURL,
		"media_type":  mediaType,
		"is_approved": false,
	})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Thanks", id)
	}

	var t models.Thanks
	if err := withRelations(r.db.WithContext(ctx)).First(&t, id).Error; err != nil {
		return nil, findErr(err, "Thanks", id)
	}
	return &t, nil
}

// deleteThanksChildren removes likes, comments and reports of the thanks
// selected by ids, which may be a slice or a subquery.
func deleteThanksChildren(tx *gorm.DB, ids interface{}) error {
	for _, child := range []interface{}{&models.Like{}, &models.Comment{}, &models.Report{}} {
		if err := tx.Where("thanks_id IN (?)", ids).Delete(child).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *thanksRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteThanksChildren(tx, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Thanks{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return findErr(err, "Thanks", id)
	}
	return nil
}

// ListFeed returns up to f.Limit approved thanks in feed order, strictly
// after f.After when set.
func (r *thanksRepository) ListFeed(ctx context.Context, f FeedFilter) ([]models.Thanks, error) {
	db := readDB(r.db).WithContext(ctx)
	q := db.Model(&models.Thanks{}).Select("thanks.*").Where("thanks.is_approved = ?", true)

	if f.CompanyID != 0 {
		q = q.Where("thanks.company_id = ?", f.CompanyID)
	}
	if f.CompanySlug != "" {
		q = q.Where("thanks.company_id IN (?)",
			db.Model(&models.Company{}).Select("id").Where("slug = ? AND is_approved = ?", f.CompanySlug, true))
	}
	if f.Media != models.MediaNone {
		q = q.Where("thanks.media_type = ?", f.Media)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := containsPattern(f.Search)
		q = q.Joins("LEFT JOIN companies ON companies.id = thanks.company_id").
			Joins("JOIN users AS authors ON authors.id = thanks.author_id").
			Where(`(LOWER(thanks.text) LIKE ? ESCAPE '\' OR LOWER(companies.name) LIKE ? ESCAPE '\' OR LOWER(authors.name) LIKE ? ESCAPE '\')`, p, p, p)
	}

	if k := f.After; k != nil {
		if f.Mode == FeedPopular {
			q = q.Where("(thanks.like_count < ? OR (thanks.like_count = ? AND (thanks.created_at < ? OR (thanks.created_at = ? AND thanks.id < ?))))",
				k.LikeCount, k.LikeCount, k.CreatedAt, k.CreatedAt, k.ID)
		} else {
			q = q.Where("(thanks.created_at < ? OR (thanks.created_at = ? AND thanks.id < ?))",
				k.CreatedAt, k.CreatedAt, k.ID)
		}
	}

	if f.Mode == FeedPopular {
		q = q.Order("thanks.like_count DESC")
	}
	q = q.Order("thanks.created_at DESC").Order("thanks.id DESC")

	var items []models.Thanks
	if err := withRelations(q).Limit(f.Limit).Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *thanksRepository) Position(ctx context.Context, id uint) (*models.Thanks, error) {
	var t models.Thanks
	err := readDB(r.db).WithContext(ctx).
		Select("id", "like_count", "created_at", "company_id", "target_user_id", "is_approved").
		First(&t, id).Error
	if err != nil {
		return nil, findErr(err, "Thanks", id)
	}
	return &t, nil
}

// CommentCounts returns approved comment counts keyed by thanks id.
func (r *thanksRepository) CommentCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ThanksID uint
		N        int64
	}
	err := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).
		Select("thanks_id, COUNT(*) AS n").
		Where("thanks_id IN ? AND is_approved = ?", ids, true).
		Group("thanks_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.ThanksID] = row.N
	}
	return counts, nil
}

// LikedBy reports which of ids userID has liked.
func (r *thanksRepository) LikedBy(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(ids))
	if userID == 0 || len(ids) == 0 {
		return liked, nil
	}
	var hits []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND thanks_id IN ?", userID, ids).
		Pluck("thanks_id", &hits).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range hits {
		liked[id] = true
	}
	return liked, nil
}

func (r *thanksRepository) Approve(ctx context.Context, id uint) (*models.Thanks, error) {
	res := r.db.WithContext(ctx).Model(&models.Thanks{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Thanks", id)
	}
	return r.GetByID(ctx, id)
}

func (r *thanksRepository) ApproveAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Thanks{}).Where("is_approved = ?", false).Update("is_approved", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *thanksRepository) ListPending(ctx context.Context, limit int) ([]models.Thanks, error) {
	var items []models.Thanks
	err := withRelations(readDB(r.db).WithContext(ctx)).
		Where("is_approved = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
