// Package service provides the request-facing resolution layer between
// callers and the reference store.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
	"github.com/vac-rating-engine/internal/store"
)

// CachedConditionResolver resolves free-text condition names through the
// reference store with an in-memory LRU cache in front of the fuzzy scan.
// The full-index scan is the one CPU-hot path in an assessment, and case
// submissions repeat the same handful of condition names, so negative
// results are cached too.
type CachedConditionResolver struct {
	store *store.Store

	cache *expirable.LRU[string, *domain.Condition]

	threshold int

	logger  *logrus.Logger
	stats   CacheStats
	statsMu sync.RWMutex
}

// CacheStats represents resolver cache performance counters.
type CacheStats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	TotalRequests int64     `json:"total_requests"`
	LastReset     time.Time `json:"last_reset"`
}

// ResolverConfig configures the cached resolver.
type ResolverConfig struct {
	// Threshold is the minimum similarity score (0-100) for a match.
	Threshold int
	// CacheSize is the maximum number of cached resolutions.
	CacheSize int
	// CacheTTL is how long a cached resolution stays valid.
	CacheTTL time.Duration
}

// NewCachedConditionResolver creates a resolver over the given store.
func NewCachedConditionResolver(s *store.Store, cfg ResolverConfig, logger *logrus.Logger) *CachedConditionResolver {
	if cfg.Threshold <= 0 || cfg.Threshold > 100 {
		cfg.Threshold = store.DefaultMatchThreshold
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &CachedConditionResolver{
		store:     s,
		cache:     expirable.NewLRU[string, *domain.Condition](cfg.CacheSize, nil, cfg.CacheTTL),
		threshold: cfg.Threshold,
		logger:    logger,
		stats:     CacheStats{LastReset: time.Now()},
	}
}

// Resolve resolves a condition name using the configured threshold.
// A nil condition with a nil error is a legitimate "not found" result.
func (r *CachedConditionResolver) Resolve(ctx context.Context, name string) (*domain.Condition, error) {
	return r.ResolveWithThreshold(ctx, name, r.threshold)
}

// ResolveWithThreshold resolves a condition name with an explicit
// minimum-confidence threshold.
func (r *CachedConditionResolver) ResolveWithThreshold(ctx context.Context, name string, threshold int) (*domain.Condition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, fmt.Errorf("resolve condition: %w", domain.ErrEmptyQuery)
	}
	r.incrementTotal()

	key := cacheKey(normalized, threshold)
	if condition, ok := r.cache.Get(key); ok {
		r.incrementHit()
		r.logger.WithFields(logrus.Fields{
			"query":     normalized,
			"cache_hit": true,
		}).Debug("Resolved condition from cache")
		return condition, nil
	}
	r.incrementMiss()

	condition := r.store.FindCondition(normalized, threshold)
	r.cache.Add(key, condition)
	return condition, nil
}

// InvalidateCache drops any cached resolution for the given name across
// all thresholds by purging the cache. The cache is small and rebuilds on
// demand, so a full purge is acceptable.
func (r *CachedConditionResolver) InvalidateCache() {
	r.cache.Purge()
}

// GetCacheStats returns a snapshot of the cache performance counters.
func (r *CachedConditionResolver) GetCacheStats() CacheStats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return r.stats
}

func cacheKey(normalized string, threshold int) string {
	return fmt.Sprintf("%d|%s", threshold, normalized)
}

func (r *CachedConditionResolver) incrementTotal() {
	r.statsMu.Lock()
	r.stats.TotalRequests++
	r.statsMu.Unlock()
}

func (r *CachedConditionResolver) incrementHit() {
	r.statsMu.Lock()
	r.stats.Hits++
	r.statsMu.Unlock()
}

func (r *CachedConditionResolver) incrementMiss() {
	r.statsMu.Lock()
	r.stats.Misses++
	r.statsMu.Unlock()
}
