package repository

import (
	"context"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListApproved(ctx context.Context, thanksID uint, page, size int) ([]models.Comment, int64, error)
	Approve(ctx context.Context, id uint) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	ListPending(ctx context.Context, limit int) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create stores the comment and loads its author.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	var author models.User
	if err := db.First(&author, comment.UserID).Error; err != nil {
		return findErr(err, "User", comment.UserID)
	}
	comment.User = &author
	return nil
}

// ListApproved returns approved comments oldest first. page is 1-based.
func (r *commentRepository) ListApproved(ctx context.Context, thanksID uint, page, size int) ([]models.Comment, int64, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).
		Where("thanks_id = ? AND is_approved = ?", thanksID, true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []models.Comment
	err := q.Preload("User").
		Order("created_at ASC, id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) Approve(ctx context.Context, id uint) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	var c models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, findErr(err, "Comment", id)
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) ListPending(ctx context.Context, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := readDB(r.db).WithContext(ctx).Preload("User").
		Where("is_approved = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
