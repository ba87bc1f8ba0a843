// Package exporters builds the OpenTelemetry span exporters and metric
// readers the observer wires into its providers.
package exporters

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Environment variables consulted for collector endpoints.
const (
	envOTLPEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPTracesEndpoint  = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	envOTLPMetricsEndpoint = "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"
	envJaegerEndpoint      = "OTEL_EXPORTER_JAEGER_ENDPOINT"
)

// envEndpoint returns the first non-empty value among the given
// environment variables.
func envEndpoint(vars ...string) string {
	for _, v := range vars {
		if val := os.Getenv(v); val != "" {
			return val
		}
	}
	return ""
}

// NewTracingExporter creates a trace span exporter based on the exporter name.
// Supported exporters: stdout, otlp, jaeger, none
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))

	case "otlp":
		if envEndpoint(envOTLPEndpoint, envOTLPTracesEndpoint) == "" {
			return nil, fmt.Errorf("OTLP endpoint not configured: set %s or %s",
				envOTLPEndpoint, envOTLPTracesEndpoint)
		}
		return otlptracegrpc.New(ctx)

	case "jaeger":
		// Jaeger accepts OTLP natively, so the OTLP exporter serves here too.
		if envEndpoint(envJaegerEndpoint) == "" {
			return nil, fmt.Errorf("Jaeger endpoint not configured: set %s", envJaegerEndpoint)
		}
		return otlptracegrpc.New(ctx)

	case "none", "":
		// Spans are dropped, but the pipeline shape stays uniform.
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("unknown exporter: %q", name)
	}
}

// NewMetricsReader creates a metrics reader based on the exporter name.
// Supported exporters: stdout, otlp, prometheus, none
func NewMetricsReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	switch name {
	case "stdout":
		return periodicReader(stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout)))

	case "otlp":
		if envEndpoint(envOTLPEndpoint, envOTLPMetricsEndpoint) == "" {
			return nil, fmt.Errorf("OTLP metrics endpoint not configured: set %s or %s",
				envOTLPEndpoint, envOTLPMetricsEndpoint)
		}
		return periodicReader(otlpmetricgrpc.New(ctx))

	case "prometheus":
		return prometheus.New()

	case "none", "":
		return periodicReader(stdoutmetric.New(stdoutmetric.WithWriter(io.Discard)))

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
}

// periodicReader wraps an exporter constructor result in a periodic
// reader, passing any constructor error through.
func periodicReader(exp sdkmetric.Exporter, err error) (sdkmetric.Reader, error) {
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
