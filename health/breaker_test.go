package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/fetchops/resilience"
)

// stubClock implements resilience.Clock with a hand-advanced time, so
// recovery windows elapse without sleeping.
type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock() *stubClock {
	return &stubClock{now: time.Unix(1700000000, 0)}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func waitState(t *testing.T, ch <-chan resilience.State, want resilience.State) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("state transition = %v, want %v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for transition to %v", want)
	}
}

func TestBreakerChecker_Name(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component: "search-api",
	})
	checker := NewBreakerChecker("search-api", breaker)

	if checker.Name() != "search-api" {
		t.Errorf("Name() = %v, want 'search-api'", checker.Name())
	}
}

func TestBreakerChecker_Closed(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component: "search-api",
	})
	checker := NewBreakerChecker("search-api", breaker)

	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "circuit closed" {
		t.Errorf("Message = %v, want 'circuit closed'", result.Message)
	}
	if result.Details["state"] != "closed" {
		t.Errorf("Details[state] = %v, want 'closed'", result.Details["state"])
	}
	if result.Details["failures"] != 0 {
		t.Errorf("Details[failures] = %v, want 0", result.Details["failures"])
	}
	if _, ok := result.Details["last_failure"]; ok {
		t.Error("Details should not carry last_failure before any failure")
	}
}

func TestBreakerChecker_ClosedWithFailures(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component:        "search-api",
		FailureThreshold: 5,
	})
	checker := NewBreakerChecker("search-api", breaker)

	fetchErr := errors.New("fetch failed")
	for i := 0; i < 2; i++ {
		_ = breaker.Execute(context.Background(), func(context.Context) error {
			return fetchErr
		})
	}

	result := checker.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", result.Status)
	}
	if result.Message != "circuit closed with 2 recent failures" {
		t.Errorf("Message = %v, want 'circuit closed with 2 recent failures'", result.Message)
	}
	if result.Details["failures"] != 2 {
		t.Errorf("Details[failures] = %v, want 2", result.Details["failures"])
	}
	if _, ok := result.Details["last_failure"]; !ok {
		t.Error("Details should carry last_failure after a failure")
	}
}

func TestBreakerChecker_Open(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component:        "search-api",
		FailureThreshold: 2,
	})
	checker := NewBreakerChecker("search-api", breaker)

	fetchErr := errors.New("fetch failed")
	for i := 0; i < 2; i++ {
		_ = breaker.Execute(context.Background(), func(context.Context) error {
			return fetchErr
		})
	}

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if result.Message != "circuit open after 2 failures" {
		t.Errorf("Message = %v, want 'circuit open after 2 failures'", result.Message)
	}
	if !errors.Is(result.Error, resilience.ErrCircuitOpen) {
		t.Errorf("Error = %v, want ErrCircuitOpen", result.Error)
	}
	if result.Details["state"] != "open" {
		t.Errorf("Details[state] = %v, want 'open'", result.Details["state"])
	}
}

func TestBreakerChecker_HalfOpen(t *testing.T) {
	clock := newStubClock()
	stateCh := make(chan resilience.State, 8)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component:        "search-api",
		FailureThreshold: 1,
		RecoveryTimeout:  50 * time.Millisecond,
		Clock:            clock,
		OnStateChange: func(from, to resilience.State) {
			stateCh <- to
		},
	})
	checker := NewBreakerChecker("search-api", breaker)

	_ = breaker.Execute(context.Background(), func(context.Context) error {
		return errors.New("fetch failed")
	})
	waitState(t, stateCh, resilience.StateOpen)

	clock.Advance(100 * time.Millisecond)

	// The next admitted call is the recovery probe; hold it in flight so
	// the breaker stays half-open while the checker reads it.
	release := make(chan struct{})
	probeDone := make(chan error, 1)
	go func() {
		probeDone <- breaker.Execute(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()
	waitState(t, stateCh, resilience.StateHalfOpen)

	result := checker.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", result.Status)
	}
	if result.Message != "circuit half-open, probing recovery" {
		t.Errorf("Message = %v, want 'circuit half-open, probing recovery'", result.Message)
	}
	if result.Details["state"] != "half-open" {
		t.Errorf("Details[state] = %v, want 'half-open'", result.Details["state"])
	}

	close(release)
	if err := <-probeDone; err != nil {
		t.Fatalf("probe error = %v", err)
	}
	waitState(t, stateCh, resilience.StateClosed)

	result = checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status after successful probe = %v, want StatusHealthy", result.Status)
	}
}

func TestBreakerChecker_ContextCancelled(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Component: "search-api",
	})
	checker := NewBreakerChecker("search-api", breaker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy for cancelled context", result.Status)
	}
	if result.Error != context.Canceled {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}
