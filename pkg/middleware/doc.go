// Package middleware wires request tracing into net/http servers.
//
// # Request flow
//
// Tracing starts a server span for each request, resolves the
// correlation ID, enriches the span through the active SpanManager, and
// stamps X-Service-Name, X-Correlation-ID, and X-Processing-Time onto
// the response. Handler panics are recorded on the span and re-raised;
// failures in the middleware itself degrade to an uninstrumented
// request rather than an error response.
//
// # Hot reload
//
// The middleware reads its span manager through SpanHolder, an atomic
// pointer whose OnReload callback plugs into the config watcher. A
// changed header capture policy takes effect on the next request.
package middleware
