package websearch

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsageStore(t *testing.T) (*UsageStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewUsageStore(rdb, nil), mr
}

func TestUsageIncrement(t *testing.T) {
	store, _ := newTestUsageStore(t)
	ctx := context.Background()

	n, err := store.Increment(ctx, "tavily")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "tavily")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	today, err := store.Today(ctx, "tavily")
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)
}

func TestUsageIsolatedPerProvider(t *testing.T) {
	store, _ := newTestUsageStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, "tavily")
	require.NoError(t, err)

	other, err := store.Today(ctx, "serper")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestUsageResetsAcrossDays(t *testing.T) {
	store, _ := newTestUsageStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day1 }

	for i := 0; i < 3; i++ {
		_, err := store.Increment(ctx, "tavily")
		require.NoError(t, err)
	}

	// 跨天后计数归零重新开始
	store.now = func() time.Time { return day1.Add(24 * time.Hour) }

	today, err := store.Today(ctx, "tavily")
	require.NoError(t, err)
	assert.Zero(t, today)

	n, err := store.Increment(ctx, "tavily")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUsageTodayEmpty(t *testing.T) {
	store, _ := newTestUsageStore(t)
	n, err := store.Today(context.Background(), "tavily")
	require.NoError(t, err)
	assert.Zero(t, n)
}
