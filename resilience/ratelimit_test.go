package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})

	if rl.config.MaxRequests != 10 {
		t.Errorf("MaxRequests = %d, want 10", rl.config.MaxRequests)
	}
	if rl.config.Window != time.Second {
		t.Errorf("Window = %v, want 1s", rl.config.Window)
	}
}

func TestRateLimiter_AllowCapsAdmissions(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 5,
		Window:      time.Second,
		Clock:       clock,
	})

	// Rapid burst: only the first MaxRequests calls are admitted.
	admitted := 0
	for i := 0; i < 8; i++ {
		if rl.Allow() {
			admitted++
		}
	}
	if admitted != 5 {
		t.Errorf("admitted = %d, want 5", admitted)
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 2,
		Window:      time.Second,
		Clock:       clock,
	})

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("first two calls must be admitted")
	}
	if rl.Allow() {
		t.Error("third call within the window must be denied")
	}

	// Half a window later the original admissions still count.
	clock.Advance(500 * time.Millisecond)
	if rl.Allow() {
		t.Error("call at 500ms must still be denied")
	}

	// Once the window slides past them, slots free up.
	clock.Advance(501 * time.Millisecond)
	if !rl.Allow() {
		t.Error("call after the window expired must be admitted")
	}
}

func TestRateLimiter_TimeUntilReset(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Second,
		Clock:       clock,
	})

	if got := rl.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() with no requests = %v, want 0", got)
	}

	rl.Allow()
	if got := rl.TimeUntilReset(); got != time.Second {
		t.Errorf("TimeUntilReset() = %v, want 1s", got)
	}

	clock.Advance(400 * time.Millisecond)
	if got := rl.TimeUntilReset(); got != 600*time.Millisecond {
		t.Errorf("TimeUntilReset() after 400ms = %v, want 600ms", got)
	}
}

func TestRateLimiter_Remaining(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 3,
		Window:      time.Second,
		Clock:       clock,
	})

	if got := rl.Remaining(); got != 3 {
		t.Errorf("Remaining() = %d, want 3", got)
	}

	rl.Allow()
	rl.Allow()
	if got := rl.Remaining(); got != 1 {
		t.Errorf("Remaining() after 2 admissions = %d, want 1", got)
	}

	clock.Advance(1100 * time.Millisecond)
	if got := rl.Remaining(); got != 3 {
		t.Errorf("Remaining() after window expiry = %d, want 3", got)
	}
}

func TestRateLimiter_WaitBlocksUntilSlot(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      50 * time.Millisecond,
	})

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second Wait() returned after %v, want >= 40ms", elapsed)
	}
}

func TestRateLimiter_WaitContextCancellation(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Hour,
	})
	rl.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := rl.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Wait() took %v after cancellation, want prompt return", elapsed)
	}
}

func TestRateLimiter_MaxWait(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Hour,
		MaxWait:     30 * time.Millisecond,
	})
	rl.Allow()

	err := rl.Wait(context.Background())
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Wait() error = %v, want ErrRateLimitExceeded identity", err)
	}
	if !IsRateLimited(err) {
		t.Error("IsRateLimited(err) = false, want true")
	}
}

func TestRateLimiter_DelayAfterAdmission(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 10,
		Window:      time.Second,
		Delay:       30 * time.Millisecond,
	})

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Wait() returned after %v, want >= 25ms delay", elapsed)
	}
}

func TestRateLimiter_Execute(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 5,
		Window:      time.Second,
	})

	executed := false
	err := rl.Execute(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("operation was not executed")
	}

	testErr := errors.New("fetch failed")
	err = rl.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Hour,
		Clock:       clock,
	})

	rl.Allow()
	if rl.Allow() {
		t.Fatal("second call must be denied before reset")
	}

	rl.Reset()
	if !rl.Allow() {
		t.Error("call after Reset() must be admitted")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 100,
		Window:      time.Hour,
		Clock:       clock,
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// The sliding window counts exactly, so exactly MaxRequests win.
	if admitted != 100 {
		t.Errorf("concurrent admitted = %d, want 100", admitted)
	}
}
