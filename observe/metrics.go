package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution metrics for fetch operations.
//
// Contract:
// - Concurrency: operations record from many goroutines at once.
// - Context: recording returns promptly and never blocks an operation.
// - Errors: a failed record is dropped, never panicked on.
type Metrics interface {
	// RecordOperation records an operation with duration and error status.
	RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error)
}

// metricsImpl drives the three operation instruments.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics builds the operation instruments on meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	m := &metricsImpl{meter: meter}

	var err error
	if m.totalCount, err = meter.Int64Counter(
		"fetch.op.total",
		metric.WithDescription("Total number of fetch operations"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.errorCount, err = meter.Int64Counter(
		"fetch.op.errors",
		metric.WithDescription("Total number of failed fetch operations"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.durationHist, err = meter.Float64Histogram(
		"fetch.op.duration_ms",
		metric.WithDescription("Fetch operation duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOperation counts the operation, counts the failure if any, and
// records the duration.
func (m *metricsImpl) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attrs()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics drops every record.
type noopMetrics struct{}

func (m *noopMetrics) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}
