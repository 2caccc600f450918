package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/DieMov/PYTHOM/internal/config"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "github.com/DieMov/PYTHOM"

// Tracing holds the tracer used for pipeline stage spans. When tracing is
// disabled the tracer is a no-op and Shutdown does nothing.
type Tracing struct {
	Provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
	Logger   *slog.Logger

	sink io.Closer
}

// InitializeTracing sets up span export according to cfg
func InitializeTracing(cfg config.TracingConfig, logger *slog.Logger) (*Tracing, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracing{Logger: logger}
	if !cfg.Enabled {
		t.Tracer = noop.NewTracerProvider().Tracer(TracerName)
		return t, nil
	}

	w, closer, err := openTraceOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	tp, err := NewTracerProvider(w)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	t.Provider = tp
	t.Tracer = tp.Tracer(TracerName, trace.WithInstrumentationVersion(config.AppVersion))
	t.sink = closer
	otel.SetTracerProvider(tp)

	logger.Info("Tracing initialized", slog.String("output", cfg.Output))
	return t, nil
}

// NewTracerProvider builds a batching provider exporting spans as JSON to w
func NewTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(createResource()),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

// createResource creates the OpenTelemetry resource
func createResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func openTraceOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr", "":
		return os.Stderr, nil, nil
	default:
		f, err := os.Create(output)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trace output %s: %w", output, err)
		}
		return f, f, nil
	}
}

// Shutdown flushes pending spans and closes the trace output
func (t *Tracing) Shutdown(ctx context.Context) error {
	var errs []error

	if t.Provider != nil {
		if err := t.Provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.sink != nil {
		if err := t.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace output close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("tracing shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// StartStage opens a span for one pipeline stage, tagged with the run id
func StartStage(ctx context.Context, tracer trace.Tracer, stage string) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	ctx, span := tracer.Start(ctx, stage)
	if runID := GetTraceID(ctx); runID != "" {
		span.SetAttributes(attribute.String("run.id", runID))
	}
	return ctx, span
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
