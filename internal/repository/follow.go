package repository

import (
	"context"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// FollowRepository stores user-user and user-company follow edges.
type FollowRepository interface {
	FollowUser(ctx context.Context, followerID, followingID uint) error
	UnfollowUser(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowingUser(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowCompany(ctx context.Context, userID, companyID uint) error
	UnfollowCompany(ctx context.Context, userID, companyID uint) (bool, error)
	IsFollowingCompany(ctx context.Context, userID, companyID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) create(ctx context.Context, edge interface{}) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("already following")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) remove(ctx context.Context, edge interface{}, query string, args ...interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Where(query, args...).Delete(edge)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *followRepository) FollowUser(ctx context.Context, followerID, followingID uint) error {
	return r.create(ctx, &models.UserFollow{FollowerID: followerID, FollowingID: followingID})
}

func (r *followRepository) UnfollowUser(ctx context.Context, followerID, followingID uint) (bool, error) {
	return r.remove(ctx, &models.UserFollow{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *followRepository) IsFollowingUser(ctx context.Context, followerID, followingID uint) (bool, error) {
	return r.exists(ctx, &models.UserFollow{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *followRepository) FollowCompany(ctx context.Context, userID, companyID uint) error {
	return r.create(ctx, &models.FollowCompany{UserID: userID, CompanyID: companyID})
}

func (r *followRepository) UnfollowCompany(ctx context.Context, userID, companyID uint) (bool, error) {
	return r.remove(ctx, &models.FollowCompany{}, "user_id = ? AND company_id = ?", userID, companyID)
}

func (r *followRepository) IsFollowingCompany(ctx context.Context, userID, companyID uint) (bool, error) {
	return r.exists(ctx, &models.FollowCompany{}, "user_id = ? AND company_id = ?", userID, companyID)
}
