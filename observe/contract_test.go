package observe

import (
	"context"
	"testing"
	"time"
)

// Both the real and the noop implementations must satisfy the package
// interfaces, so a disabled subsystem is indistinguishable at the call
// site.
var (
	_ Logger  = (*structuredLogger)(nil)
	_ Logger  = (*noopLogger)(nil)
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = (*noopMetrics)(nil)
	_ Tracer  = (*tracerImpl)(nil)
	_ Tracer  = (*noopTracer)(nil)
)

// Every noop primitive must absorb a full call cycle without panicking,
// since components hold them whenever telemetry is switched off.
func TestNoopPrimitives_AbsorbCalls(t *testing.T) {
	meta := OpMeta{Component: "fetcher", Operation: "get"}

	t.Run("logger", func(t *testing.T) {
		logger := NopLogger()
		logger.Debug("dropped")
		logger.Info("dropped", F("url", "https://example.com/a"))
		logger.Warn("dropped")
		logger.Error("dropped")

		scoped := logger.WithOp(meta)
		if scoped == nil {
			t.Fatal("WithOp() = nil, want a usable logger")
		}
		scoped.Info("dropped")
	})

	t.Run("metrics", func(t *testing.T) {
		var m noopMetrics
		m.RecordOperation(context.Background(), meta, 10*time.Millisecond, nil)
		m.RecordOperation(context.Background(), meta, 10*time.Millisecond, context.Canceled)
	})

	t.Run("tracer", func(t *testing.T) {
		tracer := newNoopTracer()
		ctx, span := tracer.StartSpan(context.Background(), meta)
		if ctx == nil {
			t.Fatal("StartSpan() returned nil context")
		}
		tracer.EndSpan(span, nil)

		_, span = tracer.StartSpan(context.Background(), meta)
		tracer.EndSpan(span, context.DeadlineExceeded)
	})
}

func TestObserver_DisabledSubsystemsShareNoops(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "page-fetcher"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	if _, ok := obs.Logger().(*noopLogger); !ok {
		t.Errorf("Logger() = %T, want *noopLogger when logging is disabled", obs.Logger())
	}
}
