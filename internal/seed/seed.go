package seed

import (
	"fmt"
	"log"

	"gratitude/internal/models"
	"gratitude/internal/validation"

	"gorm.io/gorm"
)

// Counts sizes a seeding run.
type Counts struct {
	Users     int
	Companies int
	Thanks    int
	// MaxLikes and MaxComments bound the engagement generated per thanks.
	MaxLikes    int
	MaxComments int
	// Follows is the number of follow edges created per user.
	Follows int
}

// DefaultCounts is a small but browsable dataset.
var DefaultCounts = Counts{
	Users:       40,
	Companies:   15,
	Thanks:      200,
	MaxLikes:    12,
	MaxComments: 4,
	Follows:     5,
}

// Summary reports what a run created.
type Summary struct {
	Users     int
	Companies int
	Thanks    int
	Likes     int
	Comments  int
	Follows   int
}

// Seeder fills the database with generated users, companies, thanks and
// the engagement between them.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// clearOrder lists tables children first.
var clearOrder = []string{
	"likes", "comments", "reports", "user_follows", "follow_companies",
	"thanks", "companies", "users",
}

// ClearAll deletes every row the seeder can create.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		sql := "TRUNCATE TABLE likes, comments, reports, user_follows, follow_companies, thanks, companies, users RESTART IDENTITY CASCADE"
		return s.db.Exec(sql).Error
	}
	for _, table := range clearOrder {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run generates a dataset sized by c.
func (s *Seeder) Run(c Counts) (*Summary, error) {
	if c.Users < 2 || c.Companies < 1 {
		return nil, fmt.Errorf("need at least 2 users and 1 company, got %d and %d", c.Users, c.Companies)
	}
	f := s.factory
	sum := &Summary{}

	users := make([]*models.User, 0, c.Users)
	for i := 0; i < c.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	companies := make([]*models.Company, 0, c.Companies)
	slugs := map[string]bool{}
	for i := 0; i < c.Companies; i++ {
		company, err := f.CreateCompany(func(co *models.Company) {
			for slugs[co.Slug] || co.Slug == "" {
				co.Name = fmt.Sprintf("%s %d", co.Name, f.rnd.Intn(1000))
				co.Slug = validation.Slugify(co.Name)
			}
			slugs[co.Slug] = true
		})
		if err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		companies = append(companies, company)
	}
	sum.Companies = len(companies)
	log.Printf("✓ %d companies created", sum.Companies)

	for i := 0; i < c.Thanks; i++ {
		author := users[f.rnd.Intn(len(users))]
		target := models.CompanyTarget(companies[f.rnd.Intn(len(companies))].ID)
		// One in four thanks goes to another user.
		if f.rnd.Intn(4) == 0 {
			other := users[f.rnd.Intn(len(users))]
			for other.ID == author.ID {
				other = users[f.rnd.Intn(len(users))]
			}
			target = models.UserTarget(other.ID)
		}

		th, err := f.CreateThanks(author, target)
		if err != nil {
			return nil, fmt.Errorf("create thanks: %w", err)
		}
		sum.Thanks++

		if !th.IsApproved {
			continue
		}
		likers := s.pick(users, f.rnd.Intn(c.MaxLikes+1))
		if err := f.CreateLikes(th, likers); err != nil {
			return nil, fmt.Errorf("create likes: %w", err)
		}
		sum.Likes += len(likers)

		for _, commenter := range s.pick(users, f.rnd.Intn(c.MaxComments+1)) {
			if _, err := f.CreateComment(commenter, th); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}
	log.Printf("✓ %d thanks, %d likes, %d comments created", sum.Thanks, sum.Likes, sum.Comments)

	for _, u := range users {
		for _, other := range s.pick(users, c.Follows) {
			if other.ID == u.ID {
				continue
			}
			if err := f.CreateUserFollow(u, other); err != nil {
				return nil, fmt.Errorf("create user follow: %w", err)
			}
			sum.Follows++
		}
		company := companies[f.rnd.Intn(len(companies))]
		if err := f.CreateCompanyFollow(u, company); err != nil {
			return nil, fmt.Errorf("create company follow: %w", err)
		}
		sum.Follows++
	}
	log.Printf("✓ %d follows created", sum.Follows)

	return sum, nil
}

// pick returns up to n distinct users.
func (s *Seeder) pick(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	out := make([]*models.User, 0, n)
	for _, i := range s.factory.rnd.Perm(len(users))[:n] {
		out = append(out, users[i])
	}
	return out
}
