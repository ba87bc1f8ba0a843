package cache

import "github.com/jonwraymond/fetchops/observe"

// Stats counts cache outcomes. Hits includes disk hits; DiskHits counts
// the subset of hits served by the mirror.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	DiskHits    uint64
}

// HitRatio returns the percentage of lookups served from memory or disk,
// 0 when nothing has been looked up yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Metrics receives cache events as they happen. observe.CacheCollector
// implements it over OpenTelemetry counters; the default is a no-op.
type Metrics interface {
	RecordHit()
	RecordMiss()
	RecordEviction()
	RecordExpiration()
	RecordDiskHit()
}

type nopMetrics struct{}

func (nopMetrics) RecordHit()        {}
func (nopMetrics) RecordMiss()       {}
func (nopMetrics) RecordEviction()   {}
func (nopMetrics) RecordExpiration() {}
func (nopMetrics) RecordDiskHit()    {}

// Ensure the OTel collector satisfies the metrics seam.
var _ Metrics = (*observe.CacheCollector)(nil)
