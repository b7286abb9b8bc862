// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"gratitude/internal/models"
	"gratitude/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Password123!"

// Options tunes how entities are generated.
type Options struct {
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays int
	// SkipBcrypt stores a cheap hash so large seeds finish quickly.
	SkipBcrypt bool
	// DryRun assigns synthetic ids instead of writing to the database.
	DryRun bool
	// PendingRatio is the share of thanks and comments left unapproved.
	PendingRatio float64
}

var categories = []string{
	"Retail", "Food & Drink", "Healthcare", "Technology", "Logistics",
	"Education", "Finance", "Hospitality", "Telecom", "Other",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
	hash *string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 60
	}
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() (*string, error) {
	if f.hash != nil {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, err
	}
	h := string(hashed)
	f.hash = &h
	return f.hash, nil
}

func (f *Factory) createdAt() time.Time {
	back := time.Duration(f.rnd.Intn(f.opts.MaxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) pending() bool {
	return f.rnd.Float64() < f.opts.PendingRatio
}

func (f *Factory) persist(v interface{}, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	person := gofakeit.Person()
	user := &models.User{
		Name:       person.FirstName + " " + person.LastName,
		Email:      strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", person.FirstName, person.LastName, gofakeit.Number(100, 99999))),
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Bio:        gofakeit.Sentence(10),
		Location:   gofakeit.City(),
		Profession: gofakeit.JobTitle(),
		Password:   hash,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.persist(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCompany constructs and persists an approved company with a unique
// slug.
func (f *Factory) CreateCompany(overrides ...func(*models.Company)) (*models.Company, error) {
	name := gofakeit.Company()
	company := &models.Company{
		Name:       name,
		Slug:       validation.Slugify(name),
		Category:   categories[f.rnd.Intn(len(categories))],
		LogoURL:    fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		IsApproved: true,
	}

	for _, override := range overrides {
		override(company)
	}

	if err := f.persist(company, func(id uint) { company.ID = id }); err != nil {
		return nil, err
	}
	return company, nil
}

// BuildThanks constructs a thanks from author to target without persisting
// it. About a third carry media.
func (f *Factory) BuildThanks(author *models.User, target models.Target) (*models.Thanks, error) {
	th := &models.Thanks{
		Text:       gofakeit.Paragraph(1, 2, 12, " "),
		AuthorID:   author.ID,
		IsApproved: !f.pending(),
		CreatedAt:  f.createdAt(),
	}
	if len(th.Text) > 1000 {
		th.Text = strings.TrimSpace(th.Text[:1000])
	}
	switch n := f.rnd.Intn(6); {
	case n == 0:
		th.MediaType = models.MediaVideo
		th.MediaURL = "https://cdn.example.com/videos/" + gofakeit.UUID() + ".mp4"
	case n < 3:
		th.MediaType = models.MediaImage
		th.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}
	if err := th.SetTarget(target); err != nil {
		return nil, err
	}
	return th, nil
}

// CreateThanks persists a thanks from author to target.
func (f *Factory) CreateThanks(author *models.User, target models.Target) (*models.Thanks, error) {
	th, err := f.BuildThanks(author, target)
	if err != nil {
		return nil, err
	}
	if err := f.persist(th, func(id uint) { th.ID = id }); err != nil {
		return nil, err
	}
	return th, nil
}

// CreateComment persists a comment by user on th.
func (f *Factory) CreateComment(user *models.User, th *models.Thanks) (*models.Comment, error) {
	comment := &models.Comment{
		Text:       gofakeit.Sentence(8),
		UserID:     user.ID,
		ThanksID:   th.ID,
		IsApproved: !f.pending(),
	}
	if err := f.persist(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLikes persists likes on th from users and sets like_count to match.
func (f *Factory) CreateLikes(th *models.Thanks, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	if f.opts.DryRun {
		th.LikeCount = len(users)
		log.Printf("[dry-run] CreateLikes: thanks=%d likes=%d", th.ID, len(users))
		return nil
	}
	likes := make([]models.Like, 0, len(users))
	for _, u := range users {
		likes = append(likes, models.Like{UserID: u.ID, ThanksID: th.ID})
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&likes).Error; err != nil {
			return err
		}
		th.LikeCount = len(likes)
		return tx.Model(th).UpdateColumn("like_count", th.LikeCount).Error
	})
}

// CreateUserFollow persists follower -> following.
func (f *Factory) CreateUserFollow(follower, following *models.User) error {
	edge := &models.UserFollow{FollowerID: follower.ID, FollowingID: following.ID}
	return f.persist(edge, func(id uint) { edge.ID = id })
}

// CreateCompanyFollow persists user -> company.
func (f *Factory) CreateCompanyFollow(user *models.User, company *models.Company) error {
	edge := &models.FollowCompany{UserID: user.ID, CompanyID: company.ID}
	return f.persist(edge, func(id uint) { edge.ID = id })
}
