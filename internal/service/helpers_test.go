package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gratitude/internal/models"
	"gratitude/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertCode asserts that err is an AppError with code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	assertValidationError(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, field, appErr.Field)
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

// thanksRepoStub is a stub for repository.ThanksRepository. Unset funcs
// return zero values.
type thanksRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Thanks, error)
	createFn        func(context.Context, *models.Thanks) error
	updateContentFn func(context.Context, uint, string, string, models.MediaType) (*models.Thanks, error)
	deleteFn        func(context.Context, uint) error
	listFeedFn      func(context.Context, repository.FeedFilter) ([]models.Thanks, error)
	positionFn      func(context.Context, uint) (*models.Thanks, error)
	commentCountsFn func(context.Context, []uint) (map[uint]int64, error)
	likedByFn       func(context.Context, uint, []uint) (map[uint]bool, error)
	approveFn       func(context.Context, uint) (*models.Thanks, error)
	listPendingFn   func(context.Context, int) ([]models.Thanks, error)
}

var _ repository.ThanksRepository = (*thanksRepoStub)(nil)

func (s *thanksRepoStub) GetByID(ctx context.Context, id uint) (*models.Thanks, error) {
	if s.getByIDFn == nil {
		return &models.Thanks{ID: id, IsApproved: true}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *thanksRepoStub) Create(ctx context.Context, t *models.Thanks) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, t)
}
func (s *thanksRepoStub) UpdateContent(ctx context.Context, id uint, text, url string, mt models.MediaType) (*models.Thanks, error) {
	if s.updateContentFn == nil {
		return &models.Thanks{ID: id, Text: text, MediaURL: url, MediaType: mt}, nil
	}
	return s.updateContentFn(ctx, id, text, url, mt)
}
func (s *thanksRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *thanksRepoStub) ListFeed(ctx context.Context, f repository.FeedFilter) ([]models.Thanks, error) {
	if s.listFeedFn == nil {
		return nil, nil
	}
	return s.listFeedFn(ctx, f)
}
func (s *thanksRepoStub) Position(ctx context.Context, id uint) (*models.Thanks, error) {
	if s.positionFn == nil {
		return nil, models.NewNotFoundError("Thanks", id)
	}
	return s.positionFn(ctx, id)
}
func (s *thanksRepoStub) CommentCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	if s.commentCountsFn == nil {
		return map[uint]int64{}, nil
	}
	return s.commentCountsFn(ctx, ids)
}
func (s *thanksRepoStub) LikedBy(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	if s.likedByFn == nil {
		return map[uint]bool{}, nil
	}
	return s.likedByFn(ctx, userID, ids)
}
func (s *thanksRepoStub) Approve(ctx context.Context, id uint) (*models.Thanks, error) {
	if s.approveFn == nil {
		return &models.Thanks{ID: id, IsApproved: true}, nil
	}
	return s.approveFn(ctx, id)
}
func (s *thanksRepoStub) ApproveAll(context.Context) (int64, error) { return 0, nil }
func (s *thanksRepoStub) ListPending(ctx context.Context, limit int) ([]models.Thanks, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, limit)
}

// companyRepoStub is a stub for repository.CompanyRepository.
type companyRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.Company, error)
	getApprovedFn     func(context.Context, string) (*models.Company, error)
	searchFn          func(context.Context, string, int, int) ([]models.Company, int64, error)
	nameOrSlugTakenFn func(context.Context, string, string) (bool, error)
	createFn          func(context.Context, *models.Company) error
	statsFn           func(context.Context, uint, time.Time) (models.CompanyStats, error)
	topFn             func(context.Context, time.Time, int) ([]models.TopCompany, error)
	approveFn         func(context.Context, uint) (*models.Company, error)
	deleteFn          func(context.Context, uint) (*models.Company, error)
	listPendingFn     func(context.Context, int) ([]models.Company, error)
}

var _ repository.CompanyRepository = (*companyRepoStub)(nil)

func (s *companyRepoStub) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	if s.getByIDFn == nil {
		return &models.Company{ID: id, IsApproved: true}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *companyRepoStub) GetApprovedBySlug(ctx context.Context, slug string) (*models.Company, error) {
	if s.getApprovedFn == nil {
		return nil, models.NewNotFoundMessage("company not found")
	}
	return s.getApprovedFn(ctx, slug)
}
func (s *companyRepoStub) Search(ctx context.Context, q string, page, size int) ([]models.Company, int64, error) {
	if s.searchFn == nil {
		return nil, 0, nil
	}
	return s.searchFn(ctx, q, page, size)
}
func (s *companyRepoStub) NameOrSlugTaken(ctx context.Context, name, slug string) (bool, error) {
	if s.nameOrSlugTakenFn == nil {
		return false, nil
	}
	return s.nameOrSlugTakenFn(ctx, name, slug)
}
func (s *companyRepoStub) Create(ctx context.Context, c *models.Company) error {
	if s.createFn == nil {
		c.ID = 1
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *companyRepoStub) Stats(ctx context.Context, id uint, since time.Time) (models.CompanyStats, error) {
	if s.statsFn == nil {
		return models.CompanyStats{}, nil
	}
	return s.statsFn(ctx, id, since)
}
func (s *companyRepoStub) TopCompanies(ctx context.Context, since time.Time, limit int) ([]models.TopCompany, error) {
	if s.topFn == nil {
		return nil, nil
	}
	return s.topFn(ctx, since, limit)
}
func (s *companyRepoStub) Approve(ctx context.Context, id uint) (*models.Company, error) {
	if s.approveFn == nil {
		return &models.Company{ID: id, IsApproved: true}, nil
	}
	return s.approveFn(ctx, id)
}
func (s *companyRepoStub) Delete(ctx context.Context, id uint) (*models.Company, error) {
	if s.deleteFn == nil {
		return &models.Company{ID: id}, nil
	}
	return s.deleteFn(ctx, id)
}
func (s *companyRepoStub) ListPending(ctx context.Context, limit int) ([]models.Company, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, limit)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn  func(context.Context, uint) (*models.User, error)
	updateFn   func(context.Context, uint, map[string]interface{}) (*models.User, error)
	profileFn  func(context.Context, uint) (*models.UserProfile, error)
	topUsersFn func(context.Context, time.Time, int) ([]models.TopUser, error)
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (s *userRepoStub) Create(context.Context, *models.User) error { return nil }
func (s *userRepoStub) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	if s.updateFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.updateFn(ctx, id, updates)
}
func (s *userRepoStub) IsAdmin(context.Context, uint) (bool, error) { return false, nil }
func (s *userRepoStub) SetAdmin(context.Context, string, bool) error { return nil }
func (s *userRepoStub) Profile(ctx context.Context, id uint) (*models.UserProfile, error) {
	if s.profileFn == nil {
		return &models.UserProfile{PublicUser: models.PublicUser{ID: id}}, nil
	}
	return s.profileFn(ctx, id)
}
func (s *userRepoStub) TopUsers(ctx context.Context, since time.Time, limit int) ([]models.TopUser, error) {
	if s.topUsersFn == nil {
		return nil, nil
	}
	return s.topUsersFn(ctx, since, limit)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	listApprovedFn func(context.Context, uint, int, int) ([]models.Comment, int64, error)
	approveFn      func(context.Context, uint) (*models.Comment, error)
	deleteFn       func(context.Context, uint) error
	listPendingFn  func(context.Context, int) ([]models.Comment, error)
}

var _ repository.CommentRepository = (*commentRepoStub)(nil)

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	if s.createFn == nil {
		c.ID = 1
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListApproved(ctx context.Context, thanksID uint, page, size int) ([]models.Comment, int64, error) {
	if s.listApprovedFn == nil {
		return nil, 0, nil
	}
	return s.listApprovedFn(ctx, thanksID, page, size)
}
func (s *commentRepoStub) Approve(ctx context.Context, id uint) (*models.Comment, error) {
	if s.approveFn == nil {
		return &models.Comment{ID: id, IsApproved: true}, nil
	}
	return s.approveFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ListPending(ctx context.Context, limit int) ([]models.Comment, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, limit)
}

// reportRepoStub is a stub for repository.ReportRepository.
type reportRepoStub struct {
	createFn     func(context.Context, *models.Report) error
	listFn       func(context.Context, models.ReportStatus, int) ([]models.Report, error)
	transitionFn func(context.Context, uint, models.ReportStatus) (*models.Report, error)
}

var _ repository.ReportRepository = (*reportRepoStub)(nil)

func (s *reportRepoStub) Create(ctx context.Context, r *models.Report) error {
	if s.createFn == nil {
		r.ID = 1
		return nil
	}
	return s.createFn(ctx, r)
}
func (s *reportRepoStub) List(ctx context.Context, status models.ReportStatus, limit int) ([]models.Report, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, status, limit)
}
func (s *reportRepoStub) Transition(ctx context.Context, id uint, status models.ReportStatus) (*models.Report, error) {
	if s.transitionFn == nil {
		return &models.Report{ID: id, Status: status}, nil
	}
	return s.transitionFn(ctx, id, status)
}

// followRepoStub records follow edges in memory.
type followRepoStub struct {
	users     map[[2]uint]bool
	companies map[[2]uint]bool
}

var _ repository.FollowRepository = (*followRepoStub)(nil)

func newFollowRepoStub() *followRepoStub {
	return &followRepoStub{users: map[[2]uint]bool{}, companies: map[[2]uint]bool{}}
}

func follow(m map[[2]uint]bool, a, b uint) error {
	if m[[2]uint{a, b}] {
		return models.NewConflictError("already following")
	}
	m[[2]uint{a, b}] = true
	return nil
}

func unfollow(m map[[2]uint]bool, a, b uint) bool {
	ok := m[[2]uint{a, b}]
	delete(m, [2]uint{a, b})
	return ok
}

func (s *followRepoStub) FollowUser(_ context.Context, a, b uint) error { return follow(s.users, a, b) }
func (s *followRepoStub) UnfollowUser(_ context.Context, a, b uint) (bool, error) {
	return unfollow(s.users, a, b), nil
}
func (s *followRepoStub) IsFollowingUser(_ context.Context, a, b uint) (bool, error) {
	return s.users[[2]uint{a, b}], nil
}
func (s *followRepoStub) FollowCompany(_ context.Context, a, b uint) error {
	return follow(s.companies, a, b)
}
func (s *followRepoStub) UnfollowCompany(_ context.Context, a, b uint) (bool, error) {
	return unfollow(s.companies, a, b), nil
}
func (s *followRepoStub) IsFollowingCompany(_ context.Context, a, b uint) (bool, error) {
	return s.companies[[2]uint{a, b}], nil
}
