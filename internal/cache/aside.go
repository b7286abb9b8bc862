package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gratitude/internal/middleware"
	"gratitude/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside returns the cached value for key, or calls load and stores its result
// for ttl. Redis failures degrade to calling load. Load errors are never cached.
func Aside[T any](ctx context.Context, rdb *redis.Client, name, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if rdb == nil {
		return load(ctx)
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(name, "hit").Inc()
			return cached, nil
		}
		middleware.Logger.Warn("discarding undecodable cache entry", slog.String("key", key))
		observability.CacheLookups.WithLabelValues(name, "corrupt").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues(name, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(name, "error").Inc()
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		middleware.Logger.Debug("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}
