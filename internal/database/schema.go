package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gratitude/internal/config"
	"gratitude/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted in DB_SCHEMA_MODE.
const (
	// SchemaModeMigrations runs the embedded SQL migrations. Outside
	// production it follows them with AutoMigrate so model fields added
	// during development exist before their migration is written.
	SchemaModeMigrations = "migrations"
	// SchemaModeAuto runs AutoMigrate only.
	SchemaModeAuto = "auto"
)

// SchemaPlan is what ApplySchema will do for a configuration.
type SchemaPlan struct {
	Mode        string
	Env         string
	SQL         bool
	AutoMigrate bool
}

// PlanSchema resolves DB_SCHEMA_MODE for the current environment.
// AutoMigrate alone never runs against production unless
// DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE is set.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeMigrations
	}
	plan := SchemaPlan{Mode: mode, Env: cfg.Env}
	switch mode {
	case SchemaModeMigrations:
		plan.SQL = true
		plan.AutoMigrate = !cfg.IsProduction()
	case SchemaModeAuto:
		if cfg.IsProduction() && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto is refused in %s without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
	default:
		return plan, fmt.Errorf("unknown DB_SCHEMA_MODE %q (want %q or %q)", mode, SchemaModeMigrations, SchemaModeAuto)
	}
	return plan, nil
}

// ApplySchema brings the database up to date according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		ran, err := MigrateUp(ctx, db)
		if err != nil {
			return err
		}
		middleware.Logger.Info("schema migrations checked", slog.Int("applied", len(ran)))
	}
	if plan.AutoMigrate {
		middleware.Logger.Info("auto-migrating gratitude models", slog.String("mode", plan.Mode), slog.String("env", plan.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaStatus reports the plan plus applied and pending migrations.
type SchemaStatus struct {
	Plan    SchemaPlan
	Applied []int
	Pending []Migration
}

func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	ms, err := Migrations()
	if err != nil {
		return nil, err
	}
	return schemaStatus(ctx, db, plan, ms)
}

func schemaStatus(ctx context.Context, db *gorm.DB, plan SchemaPlan, ms []Migration) (*SchemaStatus, error) {
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	status := &SchemaStatus{Plan: plan, Applied: applied}
	for _, m := range ms {
		if !done[m.Version] {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}
