package batch

import (
	"context"
	"errors"
	"time"

	goerr "github.com/agilira/go-errors"

	"github.com/jonwraymond/fetchops/observe"
)

// ErrNilOperation is returned by Process when no item function is given.
var ErrNilOperation = errors.New("batch: operation function is nil")

const errCodeInvalidConfig goerr.ErrorCode = "FETCHOPS_INVALID_CONFIG"

// Options configures Process.
type Options[T, R any] struct {
	// BatchSize is how many items each chunk holds.
	// Default: 10
	BatchSize int

	// Concurrency caps the in-flight items within a chunk.
	// Default: 3
	Concurrency int

	// RetryAttempts is the total attempts per item, including the first.
	// Default: 1 (no retry)
	RetryAttempts int

	// RetryDelay seeds the linear backoff between attempts: the wait
	// after attempt a is RetryDelay * a.
	// Default: 1 second
	RetryDelay time.Duration

	// DelayBetweenBatches pauses between chunks, not after the last.
	// Default: 0 (no pause)
	DelayBetweenBatches time.Duration

	// OnProgress fires once per completed chunk with cumulative counts.
	OnProgress func(Progress)

	// OnError fires once per failed attempt, not only the final one.
	OnError func(item T, err error, attempt int)

	// Logger receives per-chunk debug logs. Default: no-op.
	Logger observe.Logger
}

// Progress is a cumulative snapshot delivered to OnProgress after each
// chunk.
type Progress struct {
	Processed  int
	Successful int
	Failed     int
	Total      int
}

// ItemResult pairs an item with the value it produced.
type ItemResult[T, R any] struct {
	Item  T
	Value R
}

// ItemError pairs an item with the error that exhausted its attempts.
type ItemError[T any] struct {
	Item T
	Err  error
}

// Result summarizes one Process run. Successful and Failed hold items in
// processing-start order. AverageTime is TotalTime spread over
// TotalProcessed.
type Result[T, R any] struct {
	Successful     []ItemResult[T, R]
	Failed         []ItemError[T]
	TotalProcessed int
	TotalTime      time.Duration
	AverageTime    time.Duration
}

// Process splits items into chunks of BatchSize and runs each chunk with
// Concurrency-bounded parallelism and per-item retry. Item failures are
// collected in Result.Failed, never returned as an error; the error
// return is reserved for a nil fn and for ctx ending between chunks, in
// which case the partial result accompanies it.
func Process[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), opts Options[T, R]) (Result[T, R], error) {
	var result Result[T, R]

	if fn == nil {
		return result, goerr.Wrap(ErrNilOperation, errCodeInvalidConfig, "batch: invalid configuration")
	}
	normalizeOptions(&opts)

	start := time.Now()
	total := len(items)

	for lo := 0; lo < total; lo += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return finalize(result, start), err
		}

		hi := lo + opts.BatchSize
		if hi > total {
			hi = total
		}
		chunk := items[lo:hi]

		opts.Logger.Debug("processing batch",
			observe.F("from", lo),
			observe.F("to", hi),
			observe.F("total", total))

		outcomes := ParallelSettled(ctx, chunk, func(ctx context.Context, item T) (R, error) {
			return attemptItem(ctx, item, fn, &opts)
		}, opts.Concurrency)

		for i, outcome := range outcomes {
			if outcome.Err != nil {
				result.Failed = append(result.Failed, ItemError[T]{Item: chunk[i], Err: outcome.Err})
			} else {
				result.Successful = append(result.Successful, ItemResult[T, R]{Item: chunk[i], Value: outcome.Value})
			}
		}
		result.TotalProcessed += len(chunk)

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Processed:  result.TotalProcessed,
				Successful: len(result.Successful),
				Failed:     len(result.Failed),
				Total:      total,
			})
		}

		if hi < total {
			if err := sleepCtx(ctx, opts.DelayBetweenBatches); err != nil {
				return finalize(result, start), err
			}
		}
	}

	return finalize(result, start), nil
}

// attemptItem runs fn up to RetryAttempts times with linear backoff,
// reporting every failed attempt to OnError. The item's final error is
// the last attempt's, unchanged.
func attemptItem[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error), opts *Options[T, R]) (R, error) {
	var zero R
	var lastErr error

	for attempt := 1; attempt <= opts.RetryAttempts; attempt++ {
		v, err := fn(ctx, item)
		if err == nil {
			return v, nil
		}

		lastErr = err
		if opts.OnError != nil {
			opts.OnError(item, err, attempt)
		}

		if attempt < opts.RetryAttempts {
			if serr := sleepCtx(ctx, opts.RetryDelay*time.Duration(attempt)); serr != nil {
				break
			}
		}
	}

	return zero, lastErr
}

func normalizeOptions[T, R any](opts *Options[T, R]) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = observe.NopLogger()
	}
}

func finalize[T, R any](result Result[T, R], start time.Time) Result[T, R] {
	result.TotalTime = time.Since(start)
	if result.TotalProcessed > 0 {
		result.AverageTime = result.TotalTime / time.Duration(result.TotalProcessed)
	}
	return result
}
