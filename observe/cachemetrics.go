package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheCollector records cache events to OpenTelemetry counters. It
// satisfies the cache package's Metrics interface so a Cache can be wired
// to any OTel backend:
//
//	obs, _ := observe.NewObserver(ctx, cfg)
//	collector, _ := observe.NewCacheCollector(obs.Meter(), "listing_pages")
//	c, _ := cache.New[string](cache.Config{Metrics: collector})
type CacheCollector struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	evictions   metric.Int64Counter
	expirations metric.Int64Counter
	diskHits    metric.Int64Counter
	attrs       metric.MeasurementOption
}

// NewCacheCollector creates a collector whose counters carry a cache.name
// attribute so multiple caches can share one meter.
func NewCacheCollector(meter metric.Meter, cacheName string) (*CacheCollector, error) {
	c := &CacheCollector{
		attrs: metric.WithAttributes(attribute.String("cache.name", cacheName)),
	}

	var err error
	c.hits, err = meter.Int64Counter(
		"fetch.cache.hits",
		metric.WithDescription("Cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	c.misses, err = meter.Int64Counter(
		"fetch.cache.misses",
		metric.WithDescription("Cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	c.evictions, err = meter.Int64Counter(
		"fetch.cache.evictions",
		metric.WithDescription("Entries evicted by the LRU policy"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	c.expirations, err = meter.Int64Counter(
		"fetch.cache.expirations",
		metric.WithDescription("Entries removed after TTL expiry"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	c.diskHits, err = meter.Int64Counter(
		"fetch.cache.disk_hits",
		metric.WithDescription("Memory misses served from the disk mirror"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// RecordHit increments the hit counter.
func (c *CacheCollector) RecordHit() {
	c.hits.Add(context.Background(), 1, c.attrs)
}

// RecordMiss increments the miss counter.
func (c *CacheCollector) RecordMiss() {
	c.misses.Add(context.Background(), 1, c.attrs)
}

// RecordEviction increments the eviction counter.
func (c *CacheCollector) RecordEviction() {
	c.evictions.Add(context.Background(), 1, c.attrs)
}

// RecordExpiration increments the expiration counter.
func (c *CacheCollector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1, c.attrs)
}

// RecordDiskHit increments the disk-hit counter.
func (c *CacheCollector) RecordDiskHit() {
	c.diskHits.Add(context.Background(), 1, c.attrs)
}
