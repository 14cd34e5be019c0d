// Package tracing sets up the launcher's OpenTelemetry tracer provider
// and span helper, opt-in behind Options.Enabled; the launcher wraps its
// whole Run in one span (spec.md's supplemented tracing
// feature; Non-goal "telemetry (peripheral; omitted)" excludes the
// aggregating container, not local span emission from the launcher
// itself).
package tracing

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options configures the launcher's tracer provider, mirroring the
// teacher's opt-in `--enable-jaeger`/`--jaeger-endpoint` pair, which the
// cmd/capsule entrypoint exposes under the same flag names.
type Options struct {
	Enabled  bool
	Endpoint string
}

func newJaegerExporter(endpoint string) (tracesdk.SpanExporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}

// InitTracerProvider installs a global tracer provider. When opts is
// disabled it installs otel's no-op provider instead of standing up a
// Jaeger exporter, so callers can unconditionally call StartNewSpan
// without a disabled-check at each call site.
func InitTracerProvider(log logr.Logger, opts Options) (*tracesdk.TracerProvider, error) {
	if !opts.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return nil, nil
	}

	exp, err := newJaegerExporter(opts.Endpoint)
	if err != nil {
		log.Error(err, "failed to create jaeger exporter")
		return nil, err
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("capsule-launcher"),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// Shutdown flushes and stops tp. A nil tp (tracing was disabled) is a
// no-op.
func Shutdown(ctx context.Context, log logr.Logger, tp *tracesdk.TracerProvider) {
	if tp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error(err, "error shutting down tracer provider")
	}
}

// StartNewSpan starts a span with the given name and attributes; the
// launcher calls it once, for its top-level "launcher.Run" span.
func StartNewSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("capsule-launcher").Start(ctx, name)
	span.SetAttributes(attrs...)
	return ctx, span
}
