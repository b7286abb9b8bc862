// Package bootstrap wires the process-wide dependencies shared by the
// server and the operator commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gratitude/internal/cache"
	"gratitude/internal/config"
	"gratitude/internal/database"
	"gratitude/internal/middleware"
	"gratitude/internal/observability"
	"gratitude/internal/storage"
	"gratitude/internal/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema connects without applying the schema.
	SkipSchema bool
	// WithStorage builds the S3 media store. A misconfigured bucket only
	// disables uploads and the media route.
	WithStorage bool
	// WithTracing installs the tracer provider configured by TRACING_*.
	WithTracing bool
}

// Runtime holds initialized dependencies. Redis and Storage may be nil.
type Runtime struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.Store

	stopTracing func(context.Context) error
}

// InitRuntime sets up logging, content rules, tracing, the database and
// Redis, in that order.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.InitLogger(cfg.Env, cfg.LogLevel, os.Stdout)

	if err := validation.LoadProfanityList(cfg.ProfanityListPath); err != nil {
		return nil, fmt.Errorf("load profanity list: %w", err)
	}

	rt := &Runtime{stopTracing: func(context.Context) error { return nil }}
	if opts.WithTracing {
		stop, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "gratitude-api",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampler,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.stopTracing = stop
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: !opts.SkipSchema})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	rdb, err := cache.Connect(context.Background(), cfg.RedisURL)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		middleware.Logger.Info("redis disabled, using in-process fallbacks")
	case err != nil:
		middleware.Logger.Warn("redis unavailable, using in-process fallbacks", slog.String("error", err.Error()))
	default:
		middleware.Logger.Info("redis connected")
		rt.Redis = rdb
	}

	if opts.WithStorage {
		store, err := storage.NewS3Store(cfg)
		switch {
		case errors.Is(err, storage.ErrNotConfigured):
			middleware.Logger.Info("media uploads disabled, S3_BUCKET not set")
		case err != nil:
			middleware.Logger.Warn("media uploads disabled", slog.String("reason", err.Error()))
		default:
			rt.Storage = store
		}
	}

	return rt, nil
}

// ShutdownTracing flushes pending spans.
func (r *Runtime) ShutdownTracing(ctx context.Context) error {
	return r.stopTracing(ctx)
}

// Close releases every dependency. The server closes the database and
// Redis itself and only needs ShutdownTracing.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.ShutdownTracing(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
