// Package tracing owns the OpenTelemetry lifecycle and request span
// enrichment.
//
// # Lifecycle
//
// Manager moves through three states: Uninitialized before Setup, Ready
// after a successful Setup, and Disabled after a setup failure or a
// Shutdown. Setup never returns an error and never panics; an
// unreachable collector degrades the service to untraced operation
// instead of preventing startup. Shutdown is idempotent.
//
// # Enrichment
//
// SpanManager stamps request spans with the resolved correlation ID
// under every alias key, the request shape, headers selected by the
// capture policy, and CDN edge metadata. SpanRecord mirrors attribute
// writes so downstream code can read them back; middleware stores the
// record on the request context via ContextWithRecord.
//
// # Helpers
//
// WithSpan and WithSpanValue wrap units of work in child spans that
// inherit the active correlation ID. Extract and Inject move W3C trace
// context between HTTP headers and a context.
package tracing
