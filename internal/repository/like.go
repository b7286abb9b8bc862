package repository

import (
	"context"

	"gratitude/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository toggles likes while keeping thanks.like_count equal to the
// number of like rows.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, thanksID uint) (*models.LikeResult, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the caller's like if present, otherwise adds one. The
// counter only moves when a row was actually deleted or inserted, so two
// racing toggles by the same user cannot double count. Unapproved thanks
// are reported as NOT_FOUND.
func (r *likeRepository) Toggle(ctx context.Context, userID, thanksID uint) (*models.LikeResult, error) {
	var result models.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var approved []bool
		if err := tx.Model(&models.Thanks{}).Where("id = ?", thanksID).Pluck("is_approved", &approved).Error; err != nil {
			return err
		}
		if len(approved) == 0 || !approved[0] {
			return gorm.ErrRecordNotFound
		}

		del := tx.Where("user_id = ? AND thanks_id = ?", userID, thanksID).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}

		delta := 0
		if del.RowsAffected > 0 {
			delta = -1
			result.Liked = false
		} else {
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{UserID: userID, ThanksID: thanksID})
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected > 0 {
				delta = 1
			}
			result.Liked = true
		}

		if delta != 0 {
			if err := tx.Model(&models.Thanks{}).Where("id = ?", thanksID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
				return err
			}
		}

		var counts []int
		if err := tx.Model(&models.Thanks{}).Where("id = ?", thanksID).Pluck("like_count", &counts).Error; err != nil {
			return err
		}
		if len(counts) == 0 {
			return gorm.ErrRecordNotFound
		}
		result.LikeCount = counts[0]
		return nil
	})
	if err != nil {
		return nil, findErr(err, "Thanks", thanksID)
	}
	return &result, nil
}
