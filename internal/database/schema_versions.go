package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gratitude/internal/middleware"

	"gorm.io/gorm"
)

// SchemaVersion records one applied migration.
type SchemaVersion struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaVersion) TableName() string { return "schema_versions" }

func appliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	if err := db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return nil, fmt.Errorf("prepare schema_versions: %w", err)
	}
	var versions []int
	if err := db.WithContext(ctx).Model(&SchemaVersion{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("list schema versions: %w", err)
	}
	return versions, nil
}

// MigrateUp applies every embedded migration not yet recorded and returns
// the ones it ran.
func MigrateUp(ctx context.Context, db *gorm.DB) ([]Migration, error) {
	ms, err := Migrations()
	if err != nil {
		return nil, err
	}
	return migrateUp(ctx, db, ms)
}

func migrateUp(ctx context.Context, db *gorm.DB, ms []Migration) ([]Migration, error) {
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := checkKnownVersions(applied, ms); err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []Migration
	for _, m := range ms {
		if done[m.Version] {
			continue
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.Up).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaVersion{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", m, err)
		}
		middleware.Logger.Info("schema migration applied", slog.String("migration", m.String()))
		ran = append(ran, m)
	}
	return ran, nil
}

// MigrateDown runs the down script of an applied migration and forgets it.
func MigrateDown(ctx context.Context, db *gorm.DB, version int) (Migration, error) {
	ms, err := Migrations()
	if err != nil {
		return Migration{}, err
	}
	return migrateDown(ctx, db, ms, version)
}

func migrateDown(ctx context.Context, db *gorm.DB, ms []Migration, version int) (Migration, error) {
	idx := sort.Search(len(ms), func(i int) bool { return ms[i].Version >= version })
	if idx == len(ms) || ms[idx].Version != version {
		return Migration{}, fmt.Errorf("no migration with version %d in this build", version)
	}
	m := ms[idx]

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return m, err
	}
	if i := sort.SearchInts(applied, version); i == len(applied) || applied[i] != version {
		return m, fmt.Errorf("migration %s is not applied", m)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&SchemaVersion{}, "version = ?", version).Error
	})
	if err != nil {
		return m, fmt.Errorf("roll back migration %s: %w", m, err)
	}
	middleware.Logger.Info("schema migration rolled back", slog.String("migration", m.String()))
	return m, nil
}

// checkKnownVersions fails when the database was migrated by a newer build.
// Starting an older API against it would serve thanks from columns it does
// not know about.
func checkKnownVersions(applied []int, ms []Migration) error {
	known := make(map[int]bool, len(ms))
	for _, m := range ms {
		known[m.Version] = true
	}
	var unknown []string
	for _, v := range applied {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("gratitude schema has versions %s applied that this build does not ship; deploy the newer build or roll them back with `migrate down`",
		strings.Join(unknown, ", "))
}
