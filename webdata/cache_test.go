package webdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewRedisSnapshotCache(RedisCacheOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	snap := &CompanySnapshot{
		CompanyName: "Apple",
		Ticker:      "AAPL",
		Financials:  &FinancialData{Ticker: "AAPL", Sector: "Technology"},
	}
	require.NoError(t, cache.Set(ctx, "Apple", snap))

	got, err := cache.Get(ctx, "Apple")
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.CompanyName)
	assert.Equal(t, "Technology", got.Financials.Sector)
}

func TestSnapshotCacheKeyNormalization(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "  Apple ", &CompanySnapshot{CompanyName: "Apple"}))

	got, err := cache.Get(ctx, "apple")
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.CompanyName)
}

func TestSnapshotCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background(), "Unknown Co")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSnapshotCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "Apple", &CompanySnapshot{CompanyName: "Apple"}))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "Apple")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCollectorUsesCache(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	cached := &CompanySnapshot{
		CompanyName: "Acme Robotics",
		Profile:     &CompanyProfile{Description: "cached profile"},
	}
	require.NoError(t, cache.Set(ctx, "Acme Robotics", cached))

	collector := NewCollector(WithCache(cache))
	snap := collector.CollectCompanyInfo(ctx, "Acme Robotics")

	require.NotNil(t, snap.Profile)
	assert.Equal(t, "cached profile", snap.Profile.Description)
	assert.Empty(t, snap.Warnings)
}

func TestCollectorUnknownCompanyDegrades(t *testing.T) {
	collector := NewCollector()
	snap := collector.CollectCompanyInfo(context.Background(), "Joe's Corner Bakery")

	assert.True(t, snap.Empty())
	assert.Empty(t, snap.Ticker)
	require.NotEmpty(t, snap.Warnings)
	assert.Contains(t, snap.Warnings[0], "ticker symbol not found")
}
