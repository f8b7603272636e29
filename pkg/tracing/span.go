package tracing

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/correlation"
	"auriga-hq/tracewire/pkg/headers"
)

// Correlation ID attribute aliases. The same resolved ID is written
// under every alias so that dashboards and alerts built against any of
// the historical key names keep working.
const (
	AttrCorrelationID        = "correlation_id"
	AttrCorrelationIDDotted  = "correlation.id"
	AttrCorrelationIDHeader  = "x-correlation-id"
	AttrCorrelationIDCapture = "http.request.header.x-correlation-id"
)

// Request shape attributes.
const (
	AttrRequestMethod = "request.method"
	AttrRequestPath   = "request.path"
	AttrClientIP      = "client.ip"
	AttrServiceName   = "service.name"
	AttrServicePort   = "service.port"
)

// Error attributes recorded alongside a span exception.
const (
	AttrError        = "error"
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// CDN edge headers and the dotted attribute keys they enrich spans
// with. Each is also recorded under its raw header name. A value equal
// to edgeValueMissing means the edge did not supply the header and is
// skipped.
const (
	headerEdgeLocation   = "x-edge-location"
	headerEdgeRequestID  = "x-request-id"
	headerDistributionID = "x-amz-cf-id"

	AttrEdgeLocation   = "cloudfront.edge_location"
	AttrEdgeRequestID  = "cloudfront.request_id"
	AttrDistributionID = "cloudfront.distribution_id"

	edgeValueMissing = "not-found"
)

// correlationAliases lists every attribute key a resolved correlation
// ID is written under, in write order.
var correlationAliases = []string{
	AttrCorrelationID,
	AttrCorrelationIDDotted,
	AttrCorrelationIDHeader,
	AttrCorrelationIDCapture,
}

// SpanManager enriches request spans: correlation ID aliases, request
// shape, captured headers, edge metadata, and exception records.
type SpanManager struct {
	cfg         config.TracingConfig
	correlation *correlation.Manager
	policy      headers.CapturePolicy
	servicePort int
	logger      *slog.Logger
}

// NewSpanManager creates a SpanManager. The capture policy controls
// which request headers are recorded and which are redacted.
func NewSpanManager(cfg config.Config, logger *slog.Logger) *SpanManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpanManager{
		cfg:         cfg.Tracing,
		correlation: correlation.NewManager(cfg.Tracing.Correlation),
		policy: headers.CapturePolicy{
			Allow:    cfg.Middleware.CaptureHeaders,
			Patterns: cfg.Middleware.HeaderPatterns,
			Redact:   cfg.Middleware.RedactHeaders,
		},
		servicePort: cfg.Middleware.ServicePort,
		logger:      logger,
	}
}

// Correlation returns the correlation manager used for ID resolution.
func (s *SpanManager) Correlation() *correlation.Manager {
	return s.correlation
}

// InstrumentRequestSpan resolves the request's correlation ID and
// enriches rec with the full request attribute set: the ID under every
// alias, method, path, client IP, service identity, captured headers
// per policy, and edge metadata when present.
//
// It returns the resolved correlation ID. The result is ("", false)
// when no ID was found and generation is disabled, and also when the
// span is nil or not recording: a degraded backend gets no resolution
// at all, so downstream code never propagates an ID the span did not
// record. It never panics: any enrichment failure is swallowed and
// logged, leaving the span only partially enriched.
func (s *SpanManager) InstrumentRequestSpan(rec *SpanRecord, h http.Header, method, path, clientIP string) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("span enrichment failed", "panic", r)
		}
	}()

	// A non-recording span means the backend is degraded or sampled
	// out; the request proceeds entirely unenriched, with no ID minted.
	if rec == nil || !rec.IsRecording() {
		return "", false
	}

	id, ok = s.correlation.Resolve(h)
	if ok {
		for _, alias := range correlationAliases {
			rec.SetAttributes(attribute.String(alias, id))
		}
	}

	rec.SetAttributes(
		attribute.String(AttrRequestMethod, method),
		attribute.String(AttrRequestPath, path),
		attribute.String(AttrClientIP, clientIP),
		attribute.String(AttrServiceName, s.cfg.ServiceName),
	)
	if s.servicePort != 0 {
		rec.SetAttributes(attribute.Int(AttrServicePort, s.servicePort))
	}

	s.captureHeaders(rec, h)
	s.captureEdgeMetadata(rec, h)

	return id, ok
}

// captureHeaders records request headers selected by the capture
// policy, applying redaction to sensitive ones.
func (s *SpanManager) captureHeaders(rec *SpanRecord, h http.Header) {
	for name, values := range h {
		if len(values) == 0 || !s.policy.ShouldCapture(name) {
			continue
		}
		rec.SetAttributes(attribute.String(
			headers.AttributeKey(name),
			s.policy.CaptureValue(name, values[0]),
		))
	}
}

// captureEdgeMetadata records CDN edge headers under both their dotted
// attribute keys and their raw header names.
func (s *SpanManager) captureEdgeMetadata(rec *SpanRecord, h http.Header) {
	edge := []struct {
		header string
		attr   string
	}{
		{headerEdgeLocation, AttrEdgeLocation},
		{headerEdgeRequestID, AttrEdgeRequestID},
		{headerDistributionID, AttrDistributionID},
	}
	for _, e := range edge {
		v := h.Get(e.header)
		if v == "" || v == edgeValueMissing {
			continue
		}
		rec.SetAttributes(
			attribute.String(e.attr, v),
			attribute.String(e.header, v),
		)
	}
}

// RecordException marks the span as failed: the error is recorded as a
// span event, the span status is set to error with the error's message,
// and the error attributes are set. A nil error or span is a no-op.
func (s *SpanManager) RecordException(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.Bool(AttrError, true),
		attribute.String(AttrErrorType, errorType(err)),
		attribute.String(AttrErrorMessage, err.Error()),
	)
}

// errorType returns the error's Go type name, suitable for grouping in
// trace backends.
func errorType(err error) string {
	return fmt.Sprintf("%T", err)
}
