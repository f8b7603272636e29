package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SpanRecord wraps a span and mirrors every attribute written through
// it. SDK spans are write-only; the mirror is what lets an outbound
// client read the correlation ID back off the active request span.
// Safe for concurrent use.
type SpanRecord struct {
	span trace.Span

	mu    sync.RWMutex
	attrs []attribute.KeyValue
}

// NewSpanRecord wraps span. A nil span yields a record whose writes are
// dropped and whose reads find nothing.
func NewSpanRecord(span trace.Span) *SpanRecord {
	return &SpanRecord{span: span}
}

// Span returns the underlying span, or nil.
func (r *SpanRecord) Span() trace.Span {
	if r == nil {
		return nil
	}
	return r.span
}

// IsRecording reports whether the underlying span records events.
func (r *SpanRecord) IsRecording() bool {
	if r == nil || r.span == nil {
		return false
	}
	return r.span.IsRecording()
}

// SetAttributes writes kvs to the span and to the readable mirror.
// Later writes to the same key shadow earlier ones on lookup.
func (r *SpanRecord) SetAttributes(kvs ...attribute.KeyValue) {
	if r == nil {
		return
	}
	if r.span != nil {
		r.span.SetAttributes(kvs...)
	}
	r.mu.Lock()
	r.attrs = append(r.attrs, kvs...)
	r.mu.Unlock()
}

// Attribute returns the most recent value written for key.
func (r *SpanRecord) Attribute(key string) (attribute.Value, bool) {
	if r == nil {
		return attribute.Value{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.attrs) - 1; i >= 0; i-- {
		if string(r.attrs[i].Key) == key {
			return r.attrs[i].Value, true
		}
	}
	return attribute.Value{}, false
}

// Attributes returns a copy of all attributes written so far.
func (r *SpanRecord) Attributes() []attribute.KeyValue {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]attribute.KeyValue, len(r.attrs))
	copy(out, r.attrs)
	return out
}

type recordContextKey struct{}

// ContextWithRecord returns a context carrying rec. The request
// middleware stores its span record here so downstream code, outbound
// clients included, can read the request's span attributes.
func ContextWithRecord(ctx context.Context, rec *SpanRecord) context.Context {
	return context.WithValue(ctx, recordContextKey{}, rec)
}

// RecordFromContext returns the span record carried by ctx, or nil.
func RecordFromContext(ctx context.Context) *SpanRecord {
	rec, _ := ctx.Value(recordContextKey{}).(*SpanRecord)
	return rec
}

// CorrelationIDFromContext returns the correlation ID recorded on the
// active request span, checking each known attribute alias. It returns
// "" when no record is present or no alias was written.
func CorrelationIDFromContext(ctx context.Context) string {
	rec := RecordFromContext(ctx)
	if rec == nil {
		return ""
	}
	for _, alias := range correlationAliases {
		if v, ok := rec.Attribute(alias); ok {
			if s := v.AsString(); s != "" {
				return s
			}
		}
	}
	return ""
}
