package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vac-rating-engine/internal/store"
)

func newTestResolver(t *testing.T) *CachedConditionResolver {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := store.New(logger)
	require.NoError(t, s.LoadFile("../store/testdata/tod_fixture.json"))

	return NewCachedConditionResolver(s, ResolverConfig{
		Threshold: 70,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	}, logger)
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)

	condition, err := r.Resolve(context.Background(), "PTSD")

	require.NoError(t, err)
	require.NotNil(t, condition)
	assert.Equal(t, "ptsd", condition.ID)
}

func TestResolve_NotFoundIsNotAnError(t *testing.T) {
	r := newTestResolver(t)

	condition, err := r.Resolve(context.Background(), "completely unrelated gibberish zzqx")

	require.NoError(t, err)
	assert.Nil(t, condition)
}

func TestResolve_EmptyName(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve(context.Background(), "   ")

	assert.Error(t, err)
}

func TestResolve_CacheHit(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "tinnitus")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "  Tinnitus ")
	require.NoError(t, err)

	assert.Same(t, first, second)

	stats := r.GetCacheStats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestResolve_NegativeResultIsCached(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "no such condition zzqx")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "no such condition zzqx")
	require.NoError(t, err)

	stats := r.GetCacheStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestResolveWithThreshold_SeparateCacheEntries(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.ResolveWithThreshold(ctx, "tinitus", 70)
	require.NoError(t, err)
	_, err = r.ResolveWithThreshold(ctx, "tinitus", 95)
	require.NoError(t, err)

	// Different thresholds must not share cached results.
	stats := r.GetCacheStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestInvalidateCache(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "tinnitus")
	require.NoError(t, err)

	r.InvalidateCache()

	_, err = r.Resolve(ctx, "tinnitus")
	require.NoError(t, err)

	stats := r.GetCacheStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestResolve_CancelledContext(t *testing.T) {
	r := newTestResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "tinnitus")

	assert.ErrorIs(t, err, context.Canceled)
}
