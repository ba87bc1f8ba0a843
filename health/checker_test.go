package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(-1), "unknown"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b Status
		want Status
	}{
		{StatusHealthy, StatusHealthy, StatusHealthy},
		{StatusHealthy, StatusDegraded, StatusDegraded},
		{StatusDegraded, StatusHealthy, StatusDegraded},
		{StatusDegraded, StatusUnhealthy, StatusUnhealthy},
		{StatusUnhealthy, StatusHealthy, StatusUnhealthy},
	}

	for _, tt := range tests {
		if got := worse(tt.a, tt.b); got != tt.want {
			t.Errorf("worse(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name       string
		result     Result
		wantStatus Status
		wantMsg    string
		wantErr    error
	}{
		{"healthy", Healthy("fetcher operational"), StatusHealthy, "fetcher operational", nil},
		{"degraded", Degraded("upstream slow"), StatusDegraded, "upstream slow", nil},
		{"unhealthy", Unhealthy("upstream unreachable", cause), StatusUnhealthy, "upstream unreachable", cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.wantStatus)
			}
			if tt.result.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.wantMsg)
			}
			if tt.result.Error != tt.wantErr {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.wantErr)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be stamped by the constructor")
			}
		})
	}
}

func TestResult_WithDetails(t *testing.T) {
	result := Degraded("queue backing up").WithDetails(map[string]any{
		"queued": 17,
	})

	if result.Details["queued"] != 17 {
		t.Errorf("Details[queued] = %v, want 17", result.Details["queued"])
	}
	if result.Status != StatusDegraded {
		t.Errorf("WithDetails changed Status to %v", result.Status)
	}
}

func TestResult_WithDuration(t *testing.T) {
	result := Healthy("ok").WithDuration(250 * time.Millisecond)

	if result.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", result.Duration)
	}
}

func TestResult_WithDetailsCopies(t *testing.T) {
	base := Healthy("ok")
	detailed := base.WithDetails(map[string]any{"pages": 3})

	if base.Details != nil {
		t.Error("WithDetails mutated the original result")
	}
	if detailed.Details["pages"] != 3 {
		t.Errorf("Details[pages] = %v, want 3", detailed.Details["pages"])
	}
}

func TestCheckerFunc(t *testing.T) {
	calls := 0
	checker := NewCheckerFunc("listing-feed", func(ctx context.Context) Result {
		calls++
		return Healthy("feed reachable")
	})

	if checker.Name() != "listing-feed" {
		t.Errorf("Name() = %q, want listing-feed", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Check() Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "feed reachable" {
		t.Errorf("Check() Message = %q, want 'feed reachable'", result.Message)
	}
	if calls != 1 {
		t.Errorf("wrapped function called %d times, want 1", calls)
	}
}

func TestCheckerFunc_SatisfiesChecker(t *testing.T) {
	var checker Checker = NewCheckerFunc("proxy-pool", func(ctx context.Context) Result {
		return Degraded("two proxies banned")
	})

	if got := checker.Check(context.Background()).Status; got != StatusDegraded {
		t.Errorf("Check() Status = %v, want StatusDegraded", got)
	}
}

func TestCheckerFunc_RespectsContext(t *testing.T) {
	checker := NewCheckerFunc("ctx-aware", func(ctx context.Context) Result {
		if err := ctx.Err(); err != nil {
			return Unhealthy("cancelled", err)
		}
		return Healthy("ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Check() Status = %v, want StatusUnhealthy", result.Status)
	}
	if result.Error != context.Canceled {
		t.Errorf("Check() Error = %v, want context.Canceled", result.Error)
	}
}
