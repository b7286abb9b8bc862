package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript increments the window counter only while it is under the
// limit. Returns {allowed, count, pttl}.
var checkScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
if current == 0 then
  redis.call("SET", KEYS[1], 1, "PX", window)
  return {1, 1, window}
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], window)
  ttl = window
end
if current >= limit then
  return {0, current, ttl}
end
current = redis.call("INCR", KEYS[1])
return {1, current, ttl}
`)

// RedisStore shares windows between instances through Redis.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "rl:", now: time.Now}
}

func (s *RedisStore) Check(ctx context.Context, identifier, action string, p Policy) (Result, error) {
	if s.rdb == nil {
		return Result{}, fmt.Errorf("redis client is nil")
	}

	vals, err := checkScript.Run(ctx, s.rdb, []string{s.prefix + key(identifier, action)},
		p.MaxRequests, p.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}

	count := int(vals[1])
	return Result{
		Success:   vals[0] == 1,
		Limit:     p.MaxRequests,
		Remaining: remaining(p.MaxRequests, count),
		ResetAt:   s.now().Add(time.Duration(vals[2]) * time.Millisecond),
	}, nil
}
