// Package telemetry sets up OpenTelemetry tracing for the rupture binary.
//
// After Init returns, otel.Tracer can be used anywhere; StartSpan is a
// shorthand for the package tracer. With the "none" exporter the global
// no-op provider stays in place and spans cost nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used by StartSpan.
const TracerName = "github.com/danielpatrickdp/rupture-state"

var (
	// ErrNilContext is returned when Init is called with a nil context.
	ErrNilContext = errors.New("telemetry: nil context")
	// ErrUnknownExporter is returned for an unsupported exporter name.
	ErrUnknownExporter = errors.New("telemetry: unknown exporter")
)

// #region config

// Config controls telemetry behavior.
type Config struct {
	// ServiceName identifies this process in exported spans.
	ServiceName string
	// Exporter selects the trace exporter: "stdout" or "none".
	Exporter string
	// Writer receives stdout spans. Nil means os.Stderr.
	Writer io.Writer
}

// DefaultConfig returns a disabled configuration.
func DefaultConfig() Config {
	return Config{ServiceName: "rupture", Exporter: "none"}
}

// #endregion config

// #region init

// Init installs the global tracer provider. The returned shutdown flushes
// pending spans and must be called before exit.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	noop := func(context.Context) error { return nil }

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", cfg.ServiceName),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// #endregion init

// #region spans

// StartSpan starts a span on the package tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError records err on span and marks it failed. Nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// #endregion spans
