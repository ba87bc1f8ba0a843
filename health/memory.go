package health

import (
	"context"
	"fmt"
	"runtime"
)

// Memory threshold defaults as fractions of the allocation budget.
const (
	defaultWarningThreshold  = 0.8
	defaultCriticalThreshold = 0.95
)

// MemoryCheckerConfig configures the process memory checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the fraction (0-1) of the budget at which the
	// check reports degraded. Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the fraction (0-1) of the budget at which
	// the check reports unhealthy. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the allocation budget in bytes the thresholds apply
	// to. Zero means the runtime's current Sys figure, which makes the
	// check informational rather than strict.
	MaxAlloc uint64
}

// MemoryChecker reports health from the Go runtime's allocation figures.
// Long scraping runs leak listing bodies when something holds them past
// their batch; this checker catches that before the process dies.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a memory checker with defaults applied.
// Thresholds outside (0, 1) fall back to defaults, and the critical
// threshold is lifted above the warning threshold if misordered.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	config.WarningThreshold = ratioOr(config.WarningThreshold, defaultWarningThreshold)
	config.CriticalThreshold = ratioOr(config.CriticalThreshold, defaultCriticalThreshold)
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = min(config.WarningThreshold+0.1, 0.99)
	}

	return &MemoryChecker{config: config}
}

// ratioOr returns v when it is a usable fraction, fallback otherwise.
func ratioOr(v, fallback float64) float64 {
	if v <= 0 || v >= 1 {
		return fallback
	}
	return v
}

// Name identifies the checker.
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check reads runtime.MemStats and grades allocated bytes against the
// budget.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	details := map[string]any{
		"alloc_bytes":    stats.Alloc,
		"heap_sys_bytes": stats.HeapSys,
		"heap_objects":   stats.HeapObjects,
		"gc_cycles":      stats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return Healthy("no allocation budget to grade against").WithDetails(details)
	}

	usage := float64(stats.Alloc) / float64(budget)
	details["budget_bytes"] = budget
	details["usage_percent"] = usage * 100

	switch {
	case usage >= m.config.CriticalThreshold:
		return Unhealthy(
			fmt.Sprintf("allocations critical: %.1f%% of budget", usage*100),
			ErrCheckFailed,
		).WithDetails(details)
	case usage >= m.config.WarningThreshold:
		return Degraded(
			fmt.Sprintf("allocations elevated: %.1f%% of budget", usage*100),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("allocations at %.1f%% of budget", usage*100),
		).WithDetails(details)
	}
}

// ForceGC triggers a collection so the next Check reads settled figures.
func (m *MemoryChecker) ForceGC() {
	runtime.GC()
}
