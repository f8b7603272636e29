package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"auriga-hq/tracewire/pkg/tracing"
)

// Attribute keys added to log records from the request context.
const (
	AttrCorrelationID = "correlation_id"
	AttrTraceID       = "trace_id"
	AttrSpanID        = "span_id"
)

// CorrelationHandler decorates every log record with the correlation ID
// and trace identifiers found on the context, so a log line can always
// be joined with its trace.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps inner.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, record slog.Record) error {
	if id := tracing.CorrelationIDFromContext(ctx); id != "" {
		record.AddAttrs(slog.String(AttrCorrelationID, id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(AttrTraceID, sc.TraceID().String()),
			slog.String(AttrSpanID, sc.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, record)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
