// Package cache holds the Redis connection and the cache-aside helpers
// used for company pages and leaderboards.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gratitude/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned by Connect when no Redis address is configured.
var ErrDisabled = errors.New("redis disabled: REDIS_URL is empty")

const pingTimeout = 5 * time.Second

// Connect dials addr, which may be host:port or a redis:// URL, and pings
// it. The returned client counts failed commands in
// gratitude_redis_errors_total.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, ErrDisabled
	}
	opts, err := clientOptions(addr)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(errorCounter{})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func clientOptions(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return opts, nil
}

// errorCounter is a go-redis hook. A cache miss (redis.Nil) is not an error.
type errorCounter struct{}

func countFailure(command string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(command).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}
