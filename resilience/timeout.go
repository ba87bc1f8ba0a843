package resilience

import (
	"context"
	"errors"
	"time"
)

const defaultTimeout = 30 * time.Second

// TimeoutConfig configures the per-call time budget.
type TimeoutConfig struct {
	// Timeout is the budget for a single call. Default: 30 seconds.
	Timeout time.Duration
}

// Timeout enforces a deadline on each call it runs.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper, substituting the default budget
// for a zero or negative one.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op under the configured budget. On expiry the coded
// timeout error comes back immediately; op keeps running on its own
// goroutine until it notices the cancelled context, so in-flight work
// is never forcibly torn down.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return newTimeoutError(t.config.Timeout)
		}
		return ctx.Err()
	}
}

// Config returns the configuration with defaults applied.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout runs op under a one-off budget without keeping a
// wrapper around.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
