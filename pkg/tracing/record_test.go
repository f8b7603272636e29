package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSpanRecordMirror(t *testing.T) {
	span, _ := newRecordingSpan(t)
	rec := NewSpanRecord(span)

	rec.SetAttributes(
		attribute.String("correlation_id", "req-1"),
		attribute.Int("service.port", 8080),
	)

	if v, ok := rec.Attribute("correlation_id"); !ok || v.AsString() != "req-1" {
		t.Errorf("Attribute(correlation_id) = (%q, %v), want req-1", v.AsString(), ok)
	}
	if v, ok := rec.Attribute("service.port"); !ok || v.AsInt64() != 8080 {
		t.Errorf("Attribute(service.port) = (%v, %v), want 8080", v.AsInt64(), ok)
	}
	if _, ok := rec.Attribute("missing"); ok {
		t.Error("Attribute(missing) found a value")
	}

	// Later writes shadow earlier ones.
	rec.SetAttributes(attribute.String("correlation_id", "req-2"))
	if v, _ := rec.Attribute("correlation_id"); v.AsString() != "req-2" {
		t.Errorf("shadowed Attribute(correlation_id) = %q, want req-2", v.AsString())
	}

	if got := len(rec.Attributes()); got != 3 {
		t.Errorf("Attributes() returned %d entries, want 3", got)
	}
}

func TestSpanRecordNil(t *testing.T) {
	var rec *SpanRecord

	rec.SetAttributes(attribute.String("k", "v"))
	if rec.IsRecording() {
		t.Error("nil record reports recording")
	}
	if rec.Span() != nil {
		t.Error("nil record returned a span")
	}
	if _, ok := rec.Attribute("k"); ok {
		t.Error("nil record returned an attribute")
	}
}

func TestRecordContextRoundTrip(t *testing.T) {
	span, _ := newRecordingSpan(t)
	rec := NewSpanRecord(span)

	ctx := ContextWithRecord(context.Background(), rec)
	if got := RecordFromContext(ctx); got != rec {
		t.Error("RecordFromContext did not return the stored record")
	}
	if got := RecordFromContext(context.Background()); got != nil {
		t.Error("RecordFromContext on empty context returned a record")
	}
}

func TestCorrelationIDFromContext(t *testing.T) {
	aliases := []string{
		"correlation_id",
		"correlation.id",
		"x-correlation-id",
		"http.request.header.x-correlation-id",
	}
	for _, alias := range aliases {
		t.Run(alias, func(t *testing.T) {
			span, _ := newRecordingSpan(t)
			rec := NewSpanRecord(span)
			rec.SetAttributes(attribute.String(alias, "req-42"))

			ctx := ContextWithRecord(context.Background(), rec)
			if got := CorrelationIDFromContext(ctx); got != "req-42" {
				t.Errorf("CorrelationIDFromContext() = %q, want req-42", got)
			}
		})
	}
}

func TestCorrelationIDFromContextMissing(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("CorrelationIDFromContext(empty) = %q, want empty", got)
	}

	span, _ := newRecordingSpan(t)
	ctx := ContextWithRecord(context.Background(), NewSpanRecord(span))
	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("CorrelationIDFromContext(no aliases) = %q, want empty", got)
	}
}
