package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

func TestNewDecisionCacheDisabled(t *testing.T) {
	c, err := NewDecisionCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetDecisions(ctx, "k", []policy.BatchResult{{SKU: "A"}}))

	results, ok, err := c.GetDecisions(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, results)
	assert.NoError(t, c.InvalidateAll(ctx))
	assert.NoError(t, c.Close())
}

func TestFingerprint(t *testing.T) {
	day := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	req := map[string]any{"items": []string{"A", "B"}, "target_stock_days": 30}

	a, err := Fingerprint(req, day)
	require.NoError(t, err)
	assert.Len(t, a, 40)

	sameDay, err := Fingerprint(req, day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, a, sameDay)

	nextDay, err := Fingerprint(req, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, a, nextDay)

	other, err := Fingerprint(map[string]any{"items": []string{"A"}}, day)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	_, err = Fingerprint(func() {}, day)
	assert.Error(t, err)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)

	assert.Equal(t, defaultCacheTTL, cacheTTL(config.CacheConfig{}))
	assert.Equal(t, 90*time.Second, cacheTTL(config.CacheConfig{TTLSeconds: 90}))
}
