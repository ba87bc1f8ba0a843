package observe

import (
	"context"
	"errors"
	"testing"
)

// validConfig returns a Config that enables every subsystem with stdout
// exporters, so tests never need a collector endpoint.
func validConfig() Config {
	return Config{
		ServiceName: "page-fetcher",
		Version:     "0.3.1",
		Tracing: TracingConfig{
			Enabled:   true,
			Exporter:  "stdout",
			SamplePct: 0.25,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Exporter: "stdout",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "warn",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "fully enabled",
			mutate: func(*Config) {},
		},
		{
			name: "empty names select defaults",
			mutate: func(c *Config) {
				c.Tracing.Exporter = ""
				c.Metrics.Exporter = ""
				c.Logging.Level = ""
			},
		},
		{
			name:    "service name required",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: ErrMissingServiceName,
		},
		{
			name:    "unknown tracing exporter",
			mutate:  func(c *Config) { c.Tracing.Exporter = "zipkin" },
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name:    "unknown metrics exporter",
			mutate:  func(c *Config) { c.Metrics.Exporter = "statsd" },
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name:    "sample rate above one",
			mutate:  func(c *Config) { c.Tracing.SamplePct = 1.2 },
			wantErr: ErrInvalidSamplePct,
		},
		{
			name:    "negative sample rate",
			mutate:  func(c *Config) { c.Tracing.SamplePct = -0.01 },
			wantErr: ErrInvalidSamplePct,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Disabled subsystems are not validated, so a config can carry garbage
// in sections it never turns on.
func TestConfigValidate_SkipsDisabledSubsystems(t *testing.T) {
	cfg := Config{
		ServiceName: "page-fetcher",
		Tracing:     TracingConfig{Exporter: "zipkin", SamplePct: 7},
		Metrics:     MetricsConfig{Exporter: "statsd"},
		Logging:     LoggingConfig{Level: "trace"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil when nothing is enabled", err)
	}
}

func TestNewObserver_AllDisabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "page-fetcher"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("disabled observer must still hand out usable noop primitives")
	}

	// The noop tracer tolerates a full span round-trip.
	_, span := obs.Tracer().Start(context.Background(), "fetch")
	span.End()

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_StdoutPipelines(t *testing.T) {
	obs, err := NewObserver(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil {
		t.Error("Tracer() = nil, want stdout-backed tracer")
	}
	if obs.Meter() == nil {
		t.Error("Meter() = nil, want stdout-backed meter")
	}
	if obs.Logger() == nil {
		t.Error("Logger() = nil, want structured logger")
	}
}

func TestNewObserver_RejectsBadConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Exporter = "zipkin"

	if _, err := NewObserver(context.Background(), cfg); !errors.Is(err, ErrInvalidTracingExporter) {
		t.Fatalf("NewObserver() error = %v, want ErrInvalidTracingExporter", err)
	}
}

func TestObserver_ShutdownFlushes(t *testing.T) {
	obs, err := NewObserver(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}
