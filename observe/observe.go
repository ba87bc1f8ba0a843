package observe

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/fetchops/observe/exporters"
)

// Config selects which telemetry subsystems run and how they export.
type Config struct {
	ServiceName string // reported as service.name on every signal
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // one of ValidTracingExporters; empty selects none
	SamplePct float64 // fraction of traces kept, MinSamplePct to MaxSamplePct
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // one of ValidMetricsExporters; empty selects none
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // one of ValidLogLevels; empty selects info
}

// Validate checks the configuration against the accepted exporter and
// level names. Subsystems that are not enabled are not checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if c.Tracing.Enabled {
		if !slices.Contains(ValidTracingExporters, c.Tracing.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < MinSamplePct || c.Tracing.SamplePct > MaxSamplePct {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}

	if c.Metrics.Enabled && !slices.Contains(ValidMetricsExporters, c.Metrics.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}

	if c.Logging.Enabled && !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// Observer provides access to telemetry primitives.
//
// Contract:
// - Concurrency: every primitive is shared across goroutines.
// - Context: Shutdown gives up flushing when its context is done.
// - Errors: Shutdown joins the tracer and meter flush errors it hits.
type Observer interface {
	// Tracer returns the tracer instrumented components start spans on.
	Tracer() trace.Tracer

	// Meter returns the meter instruments are built on.
	Meter() metric.Meter

	// Logger returns the structured logger, or a nop when logging is off.
	Logger() Logger

	// Shutdown flushes and stops every live provider.
	Shutdown(ctx context.Context) error
}

// Logger is a minimal structured logging interface. Components take one
// in their Config and default to NopLogger, so logging never requires a
// context or a process-wide instance.
//
// Contract:
// - Concurrency: callers log from many goroutines at once.
// - Errors: emission failures are swallowed; logging never panics.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	WithOp(meta OpMeta) Logger
}

// Field is one key/value pair on a log line.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field. Shorthand for component call sites.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// observer bundles the live providers with the primitives they issue.
// Providers stay nil for disabled subsystems; the primitives then point
// at noops.
type observer struct {
	tracer         trace.Tracer
	meter          metric.Meter
	logger         Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewObserver creates an Observer from cfg. Subsystems that are not
// enabled get no-op implementations, so the returned Observer is always
// safe to use in full.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  noop.NewMeterProvider().Meter("noop"),
		logger: NopLogger(),
	}

	if cfg.Tracing.Enabled {
		if err := obs.startTracing(ctx, cfg, res); err != nil {
			return nil, fmt.Errorf("starting tracing: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := obs.startMetrics(ctx, cfg, res); err != nil {
			return nil, fmt.Errorf("starting metrics: %w", err)
		}
	}
	if cfg.Logging.Enabled {
		obs.logger = NewLogger(cfg.Logging.Level)
	}

	return obs, nil
}

func (o *observer) startTracing(ctx context.Context, cfg Config, res *resource.Resource) error {
	exporter, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
	if err != nil {
		return err
	}

	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.Tracing.SamplePct)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)
	return nil
}

func (o *observer) startMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
	if err != nil {
		return err
	}

	o.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(o.meterProvider)
	o.meter = o.meterProvider.Meter(cfg.ServiceName)
	return nil
}

// samplerFor maps a sampling fraction to an SDK sampler, with the
// endpoints shortcut to the cheap always/never implementations.
func samplerFor(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1.0:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var tracerErr, meterErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			tracerErr = fmt.Errorf("tracer shutdown: %w", err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			meterErr = fmt.Errorf("meter shutdown: %w", err)
		}
	}
	return errors.Join(tracerErr, meterErr)
}

// NopLogger returns a Logger that discards everything. Components use it
// as the default when no logger is configured.
func NopLogger() Logger {
	return &noopLogger{}
}

// noopLogger swallows every line.
type noopLogger struct{}

func (l *noopLogger) Info(msg string, fields ...Field)  {}
func (l *noopLogger) Warn(msg string, fields ...Field)  {}
func (l *noopLogger) Error(msg string, fields ...Field) {}
func (l *noopLogger) Debug(msg string, fields ...Field) {}
func (l *noopLogger) WithOp(meta OpMeta) Logger         { return l }
