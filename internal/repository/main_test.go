package repository

import (
	"fmt"
	"testing"
	"time"

	"gratitude/internal/database"
	"gratitude/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&_fk=1", t.Name())), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func mkUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: fmt.Sprintf("%s@example.com", name)}
	require.NoError(t, db.Create(u).Error)
	return u
}

func mkCompany(t *testing.T, db *gorm.DB, name, slug string, approved bool) *models.Company {
	t.Helper()
	c := &models.Company{Name: name, Slug: slug, Category: "Retail", IsApproved: approved}
	require.NoError(t, db.Create(c).Error)
	if !approved {
		require.NoError(t, db.Model(c).Update("is_approved", false).Error)
	}
	return c
}

type thanksOpt func(*models.Thanks)

func at(offset time.Duration) thanksOpt {
	return func(t *models.Thanks) { t.CreatedAt = base.Add(offset) }
}

func likes(n int) thanksOpt {
	return func(t *models.Thanks) { t.LikeCount = n }
}

func pending() thanksOpt {
	return func(t *models.Thanks) { t.IsApproved = false }
}

func media(m models.MediaType) thanksOpt {
	return func(t *models.Thanks) {
		t.MediaType = m
		t.MediaURL = "https://cdn.example.com/x"
	}
}

func text(s string) thanksOpt {
	return func(t *models.Thanks) { t.Text = s }
}

func mkThanks(t *testing.T, db *gorm.DB, author *models.User, target models.Target, opts ...thanksOpt) *models.Thanks {
	t.Helper()
	th := &models.Thanks{Text: "thank you very much", AuthorID: author.ID, IsApproved: true, CreatedAt: base}
	require.NoError(t, th.SetTarget(target))
	for _, o := range opts {
		o(th)
	}
	approved := th.IsApproved
	require.NoError(t, db.Create(th).Error)
	// default:false columns skip zero values on insert
	if !approved {
		require.NoError(t, db.Model(th).UpdateColumn("is_approved", false).Error)
	}
	return th
}
