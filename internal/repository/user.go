package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gratitude/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error)
	IsAdmin(ctx context.Context, id uint) (bool, error)
	SetAdmin(ctx context.Context, email string, admin bool) error
	Profile(ctx context.Context, id uint) (*models.UserProfile, error)
	TopUsers(ctx context.Context, since time.Time, limit int) ([]models.TopUser, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, findErr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("an account with this email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, findErr(err, "User", id)
	}
	return &user, nil
}

// IsAdmin reads the flag from the primary so a demotion takes effect on the
// next request.
func (r *userRepository) IsAdmin(ctx context.Context, id uint) (bool, error) {
	var flags []bool
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Pluck("is_admin", &flags).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return len(flags) == 1 && flags[0], nil
}

func (r *userRepository) SetAdmin(ctx context.Context, email string, admin bool) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("is_admin", admin)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessage("no user with email " + email)
	}
	return nil
}

func (r *userRepository) Profile(ctx context.Context, id uint) (*models.UserProfile, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	db := readDB(r.db).WithContext(ctx)
	p := &models.UserProfile{
		PublicUser: *user.Public(),
		Bio:        user.Bio,
		Location:   user.Location,
		Website:    user.Website,
		CreatedAt:  user.CreatedAt,
	}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&p.ThanksGiven, db.Model(&models.Thanks{}).Where("author_id = ? AND is_approved = ?", id, true)},
		{&p.ThanksReceived, db.Model(&models.Thanks{}).Where("target_user_id = ? AND is_approved = ?", id, true)},
		{&p.Followers, db.Model(&models.UserFollow{}).Where("following_id = ?", id)},
		{&p.Following, db.Model(&models.UserFollow{}).Where("follower_id = ?", id)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return p, nil
}

// TopUsers ranks authors by likes received on their approved thanks created
// since the given time.
func (r *userRepository) TopUsers(ctx context.Context, since time.Time, limit int) ([]models.TopUser, error) {
	var rows []models.TopUser
	err := readDB(r.db).WithContext(ctx).
		Table("thanks").
		Select("users.id AS id, users.name AS name, users.image AS image, "+
			"COALESCE(SUM(thanks.like_count), 0) AS total_likes, COUNT(thanks.id) AS thanks_count").
		Joins("JOIN users ON users.id = thanks.author_id").
		Where("thanks.is_approved = ? AND thanks.created_at >= ?", true, since).
		Group("users.id, users.name, users.image").
		Order("total_likes DESC, thanks_count DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}
