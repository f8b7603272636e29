package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithSpan runs fn inside a child span named name. The span inherits
// the active correlation ID from the request record in ctx, records any
// returned error, and always ends before WithSpan returns.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := startSpan(ctx, name, attrs...)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// WithSpanValue is WithSpan for functions that also return a value.
func WithSpanValue[T any](ctx context.Context, name string, fn func(context.Context) (T, error), attrs ...attribute.KeyValue) (T, error) {
	ctx, span := startSpan(ctx, name, attrs...)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

// startSpan starts a child span on the global tracer, stamping it with
// the request's correlation ID when one is on the context.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("auriga-hq/tracewire")
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("code.function", name)))

	if id := CorrelationIDFromContext(ctx); id != "" {
		span.SetAttributes(attribute.String(AttrCorrelationID, id))
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}
