package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"gratitude/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAside_LoadsOnceThenHits(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (entry, error) {
		calls++
		return entry{Name: "acme", Count: 3}, nil
	}

	first, err := Aside(ctx, rdb, CacheCompany, CompanyKey("acme"), CompanyTTL, load)
	require.NoError(t, err)
	second, err := Aside(ctx, rdb, CacheCompany, CompanyKey("acme"), CompanyTTL, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("company:acme"))
	assert.Equal(t, CompanyTTL, mr.TTL("company:acme"))
}

func TestAside_ExpiresAfterTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]entry, error) {
		calls++
		return []entry{{Name: "a"}}, nil
	}

	_, err := Aside(ctx, rdb, CacheTopLists, TopCompaniesKeyFor(10), TopListTTL, load)
	require.NoError(t, err)
	mr.FastForward(TopListTTL + time.Second)
	_, err = Aside(ctx, rdb, CacheTopLists, TopCompaniesKeyFor(10), TopListTTL, load)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestAside_LoadErrorNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	boom := errors.New("boom")

	_, err := Aside(context.Background(), rdb, CacheCompany, CompanyKey("x"), CompanyTTL, func(context.Context) (entry, error) {
		return entry{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("company:x"))
}

func TestAside_NilClientCallsLoad(t *testing.T) {
	got, err := Aside(context.Background(), nil, CacheCompany, "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestAside_RedisDownFallsBackToLoad(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	got, err := Aside(context.Background(), rdb, CacheCompany, "k", time.Minute, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestAside_CorruptEntryReloaded(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("company:bad", "{not json"))

	got, err := Aside(context.Background(), rdb, CacheCompany, CompanyKey("bad"), CompanyTTL, func(context.Context) (entry, error) {
		return entry{Name: "bad"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bad", got.Name)

	raw, err := mr.Get("company:bad")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"bad","count":0}`, raw)
}

func TestInvalidate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(CompanyKey("acme"), "{}"))
	require.NoError(t, mr.Set(TopCompaniesKeyFor(10), "[]"))
	require.NoError(t, mr.Set(TopUsersKeyFor(5), "[]"))
	require.NoError(t, mr.Set("unrelated", "1"))

	InvalidateCompany(ctx, rdb, "acme")
	assert.False(t, mr.Exists("company:acme"))

	InvalidateTopLists(ctx, rdb)
	assert.False(t, mr.Exists("top:companies:10"))
	assert.False(t, mr.Exists("top:users:5"))
	assert.True(t, mr.Exists("unrelated"))

	Invalidate(ctx, nil, "anything")
	InvalidateTopLists(ctx, nil)
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, "  ")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Connect(ctx, "redis://%zz")
	assert.ErrorContains(t, err, "REDIS_URL")

	mr := miniredis.RunT(t)
	rdb, err := Connect(ctx, mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())

	rdb, err = Connect(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(ctx, addr)
	assert.ErrorContains(t, err, "ping redis")
}

func redisErrors(t *testing.T, command string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, middleware.RedisErrors.WithLabelValues(command).Write(&m))
	return m.GetCounter().GetValue()
}

func TestErrorCounter_IgnoresMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	before := redisErrors(t, "get")
	assert.ErrorIs(t, rdb.Get(context.Background(), "missing").Err(), redis.Nil)
	assert.Equal(t, before, redisErrors(t, "get"))

	mr.SetError("READONLY")
	assert.Error(t, rdb.Get(context.Background(), "missing").Err())
	assert.Equal(t, before+1, redisErrors(t, "get"))
}
