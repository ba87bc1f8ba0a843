package health

import (
	"context"
	"errors"
	"testing"
)

func TestNewMemoryChecker_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		config       MemoryCheckerConfig
		wantWarning  float64
		wantCritical float64
	}{
		{"defaults", MemoryCheckerConfig{}, 0.8, 0.95},
		{"custom", MemoryCheckerConfig{WarningThreshold: 0.7, CriticalThreshold: 0.9}, 0.7, 0.9},
		{"warning above one", MemoryCheckerConfig{WarningThreshold: 1.5}, 0.8, 0.95},
		{"negative critical", MemoryCheckerConfig{CriticalThreshold: -0.2}, 0.8, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewMemoryChecker(tt.config)
			if checker.config.WarningThreshold != tt.wantWarning {
				t.Errorf("WarningThreshold = %v, want %v", checker.config.WarningThreshold, tt.wantWarning)
			}
			if checker.config.CriticalThreshold != tt.wantCritical {
				t.Errorf("CriticalThreshold = %v, want %v", checker.config.CriticalThreshold, tt.wantCritical)
			}
		})
	}
}

func TestNewMemoryChecker_MisorderedThresholds(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{
		WarningThreshold:  0.9,
		CriticalThreshold: 0.7,
	})

	if checker.config.CriticalThreshold <= checker.config.WarningThreshold {
		t.Errorf("CriticalThreshold = %v, want lifted above %v",
			checker.config.CriticalThreshold, checker.config.WarningThreshold)
	}
	if checker.config.CriticalThreshold > 0.99 {
		t.Errorf("CriticalThreshold = %v, want capped at 0.99", checker.config.CriticalThreshold)
	}
}

func TestMemoryChecker_Name(t *testing.T) {
	if got := NewMemoryChecker(MemoryCheckerConfig{}).Name(); got != "memory" {
		t.Errorf("Name() = %q, want memory", got)
	}
}

func TestMemoryChecker_Check(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})

	result := checker.Check(context.Background())

	// A test process should sit well under its Sys figure.
	if result.Status == StatusUnhealthy {
		t.Logf("memory check unhealthy in test environment: %s", result.Message)
	}

	if result.Details == nil {
		t.Fatal("Details should not be nil")
	}
	for _, key := range []string{"alloc_bytes", "heap_sys_bytes", "gc_cycles", "goroutines", "budget_bytes"} {
		if _, ok := result.Details[key]; !ok {
			t.Errorf("Details missing key %q", key)
		}
	}
}

func TestMemoryChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewMemoryChecker(MemoryCheckerConfig{}).Check(ctx)

	if result.Status != StatusUnhealthy {
		t.Errorf("cancelled Check() status = %v, want StatusUnhealthy", result.Status)
	}
	if !errors.Is(result.Error, context.Canceled) {
		t.Errorf("cancelled Check() error = %v, want context.Canceled", result.Error)
	}
}

func TestMemoryChecker_ForceGC(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})
	checker.ForceGC()

	if result := checker.Check(context.Background()); result.Error != nil {
		t.Errorf("Check() after ForceGC reported %v", result.Error)
	}
}

func TestMemoryChecker_TinyBudget(t *testing.T) {
	// A 1KB budget forces the usage ratio past critical.
	checker := NewMemoryChecker(MemoryCheckerConfig{
		MaxAlloc:          1024,
		WarningThreshold:  0.5,
		CriticalThreshold: 0.8,
	})

	result := checker.Check(context.Background())

	if result.Status == StatusHealthy {
		t.Errorf("Status = %v, want degraded or unhealthy with a 1KB budget", result.Status)
	}
	if result.Details["budget_bytes"] != uint64(1024) {
		t.Errorf("budget_bytes = %v, want 1024", result.Details["budget_bytes"])
	}
	if _, ok := result.Details["usage_percent"]; !ok {
		t.Error("Details missing usage_percent")
	}
}
