package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/fetchops/cache"
)

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// Stats and Len observe the cache. Pass the cache's method values:
	//
	//	health.NewCacheChecker("listing-cache", health.CacheCheckerConfig{
	//	    Stats:   c.Stats,
	//	    Len:     c.Len,
	//	    MaxSize: 500,
	//	})
	//
	// Stats is required; Len and MaxSize enable the occupancy signal.
	Stats func() cache.Stats
	Len   func() int

	// MaxSize is the cache's configured capacity.
	MaxSize int

	// MinHitRatio is the hit percentage (0-100) below which the cache
	// reports degraded, once MinSamples lookups have happened.
	// Default: 50.
	MinHitRatio float64

	// MinSamples is how many lookups must accumulate before the hit
	// ratio is judged. Default: 100.
	MinSamples uint64

	// NearCapacityRatio is the occupancy fraction (0-1) at which the
	// cache reports degraded. Default: 0.9.
	NearCapacityRatio float64
}

// CacheChecker watches a cache's effectiveness: degraded when the hit
// ratio sits below MinHitRatio or occupancy reaches NearCapacityRatio,
// healthy otherwise. A cache never reports unhealthy from this checker;
// a cold or thrashing cache slows the pipeline but does not break it.
type CacheChecker struct {
	name   string
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache health check with defaults applied.
func NewCacheChecker(name string, config CacheCheckerConfig) *CacheChecker {
	if config.MinHitRatio <= 0 || config.MinHitRatio > 100 {
		config.MinHitRatio = 50
	}
	if config.MinSamples == 0 {
		config.MinSamples = 100
	}
	if config.NearCapacityRatio <= 0 || config.NearCapacityRatio > 1 {
		config.NearCapacityRatio = 0.9
	}

	return &CacheChecker{name: name, config: config}
}

// Name identifies the checker.
func (c *CacheChecker) Name() string {
	return c.name
}

// Check inspects the cache counters and occupancy.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	if c.config.Stats == nil {
		return Unhealthy("cache checker missing stats source", ErrCheckFailed)
	}

	stats := c.config.Stats()
	ratio := stats.HitRatio()
	samples := stats.Hits + stats.Misses

	details := map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"disk_hits":   stats.DiskHits,
		"evictions":   stats.Evictions,
		"expirations": stats.Expirations,
		"hit_ratio":   ratio,
	}

	occupancy := -1.0
	if c.config.Len != nil && c.config.MaxSize > 0 {
		entries := c.config.Len()
		occupancy = float64(entries) / float64(c.config.MaxSize)
		details["entries"] = entries
		details["max_size"] = c.config.MaxSize
		details["occupancy"] = occupancy
	}

	if occupancy >= c.config.NearCapacityRatio {
		return Degraded(
			fmt.Sprintf("cache near capacity: %.0f%% full", occupancy*100),
		).WithDetails(details)
	}

	if samples >= c.config.MinSamples && ratio < c.config.MinHitRatio {
		return Degraded(
			fmt.Sprintf("cache hit ratio low: %.1f%%", ratio),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("cache effective: %.1f%% hit ratio", ratio),
	).WithDetails(details)
}
