package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CompanyKeyPrefix = "company:%s"
	TopCompaniesKey  = "top:companies:%d"
	TopUsersKey      = "top:users:%d"
	RevokedJTIPrefix = "auth:revoked:%s"
)

const (
	CompanyTTL = 10 * time.Minute
	TopListTTL = 5 * time.Minute
)

// Cache names used as metric labels.
const (
	CacheCompany  = "company"
	CacheTopLists = "top"
)

func CompanyKey(slug string) string {
	return fmt.Sprintf(CompanyKeyPrefix, slug)
}

func TopCompaniesKeyFor(limit int) string {
	return fmt.Sprintf(TopCompaniesKey, limit)
}

func TopUsersKeyFor(limit int) string {
	return fmt.Sprintf(TopUsersKey, limit)
}

func RevokedJTIKey(jti string) string {
	return fmt.Sprintf(RevokedJTIPrefix, jti)
}

// Invalidate deletes keys. A nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	rdb.Del(ctx, keys...)
}

func InvalidateCompany(ctx context.Context, rdb *redis.Client, slug string) {
	Invalidate(ctx, rdb, CompanyKey(slug))
}

// InvalidateTopLists drops every cached leaderboard page.
func InvalidateTopLists(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	for _, pattern := range []string{"top:companies:*", "top:users:*"} {
		iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		Invalidate(ctx, rdb, keys...)
	}
}
