package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/telemetry/metrics"
	"auriga-hq/tracewire/pkg/tracing"
)

// Response headers stamped by the tracing middleware.
const (
	HeaderServiceName    = "X-Service-Name"
	HeaderCorrelationID  = "X-Correlation-ID"
	HeaderProcessingTime = "X-Processing-Time"
)

// Tracing returns middleware that wraps each request in a server span,
// enriches it with the correlation ID and request attributes, and
// stamps the response with the service name, correlation ID, and
// processing time.
//
// The middleware never takes a request down with it. Enrichment
// failures are logged and the request proceeds with whatever attributes
// were written before the failure. A panic from the wrapped handler is
// recorded on the span and re-raised unchanged. If the middleware's own
// plumbing fails, the handler is invoked bare; only when that bare call
// also panics does the client see a plain 500.
//
// collector and logger may be nil.
func Tracing(cfg *config.Config, holder *SpanHolder, collector *metrics.Collector, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if !cfg.Middleware.MiddlewareEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := &tracedRequest{
				cfg:       cfg,
				spans:     holder.Load(),
				collector: collector,
				logger:    logger,
				next:      next,
			}
			if !t.serve(w, r) {
				serveBare(w, r, next, logger)
			}
		})
	}
}

// tracedRequest carries the per-request state of one middleware pass.
type tracedRequest struct {
	cfg       *config.Config
	spans     *tracing.SpanManager
	collector *metrics.Collector
	logger    *slog.Logger
	next      http.Handler

	handlerPanicked bool
	handlerDone     bool
}

// serve runs the instrumented request path. It returns false when the
// middleware's own plumbing failed before the handler ran, meaning the
// caller should fall back to the bare handler. Handler panics are
// recorded and re-raised, never converted into a fallback.
func (t *tracedRequest) serve(w http.ResponseWriter, r *http.Request) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			if t.handlerPanicked {
				panic(p)
			}
			t.logger.Error("tracing middleware failed",
				"panic", p,
				"method", r.Method,
				"path", r.URL.Path,
			)
			if t.collector != nil {
				t.collector.RecordEnrichmentFailure()
			}
			// The handler already produced a response; nothing left to
			// salvage by running it again.
			ok = t.handlerDone
		}
	}()

	start := time.Now()

	ctx := tracing.Extract(r.Context(), r.Header)
	ctx, span := otel.Tracer("auriga-hq/tracewire").Start(ctx,
		r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	rec := tracing.NewSpanRecord(span)
	ctx = tracing.ContextWithRecord(ctx, rec)

	_, inbound := t.spans.Correlation().Extract(r.Header)
	id, resolved := t.enrich(rec, r)

	if resolved && !inbound && t.collector != nil {
		t.collector.RecordIDGenerated()
	}

	w.Header().Set(HeaderServiceName, t.cfg.Tracing.ServiceName)
	if resolved {
		w.Header().Set(HeaderCorrelationID, id)
	}
	ww := &timingResponseWriter{ResponseWriter: w, start: start}

	func() {
		defer func() {
			if p := recover(); p != nil {
				t.handlerPanicked = true
				t.recordPanic(span, p)
				panic(p)
			}
		}()
		t.next.ServeHTTP(ww, r.WithContext(ctx))
		t.handlerDone = true
	}()

	// A handler that returns without writing leaves net/http to send
	// the implicit 200 later; stamp the timing header while it still
	// can make it onto the wire.
	if !ww.wroteHeader {
		ww.stampTiming()
	}

	status := ww.Status()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	if t.collector != nil {
		t.collector.RecordRequest(r.Method, idSource(inbound), time.Since(start))
	}
	return true
}

// enrich resolves the correlation ID and writes the request attribute
// set. A failure inside the span manager is already swallowed there;
// this guard covers the surrounding calls.
func (t *tracedRequest) enrich(rec *tracing.SpanRecord, r *http.Request) (id string, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			t.logger.Warn("request enrichment failed", "panic", p)
			if t.collector != nil {
				t.collector.RecordEnrichmentFailure()
			}
		}
	}()
	return t.spans.InstrumentRequestSpan(rec, r.Header, r.Method, r.URL.Path, clientIP(r))
}

// recordPanic marks the span failed for a handler panic.
func (t *tracedRequest) recordPanic(span trace.Span, p any) {
	if !t.cfg.Middleware.ExceptionsEnabled() {
		return
	}
	err, isErr := p.(error)
	if !isErr {
		err = fmt.Errorf("panic: %v", p)
	}
	t.spans.RecordException(span, err)
}

// serveBare runs the handler without instrumentation. If even that
// panics, the client gets a minimal 500 instead of a dropped connection.
func serveBare(w http.ResponseWriter, r *http.Request, next http.Handler, logger *slog.Logger) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("handler failed after middleware fallback",
				"panic", p,
				"method", r.Method,
				"path", r.URL.Path,
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()
	next.ServeHTTP(w, r)
}

// idSource labels where the request's correlation ID came from.
func idSource(inbound bool) string {
	if inbound {
		return "inbound"
	}
	return "generated"
}

// clientIP returns the peer address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// timingResponseWriter stamps X-Processing-Time on the first write,
// which is the last moment headers can still be set.
type timingResponseWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (w *timingResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	w.wroteHeader = true
	w.status = status
	w.stampTiming()
	w.ResponseWriter.WriteHeader(status)
}

func (w *timingResponseWriter) stampTiming() {
	elapsed := time.Since(w.start).Seconds()
	w.Header().Set(HeaderProcessingTime, strconv.FormatFloat(elapsed, 'f', 4, 64))
}

func (w *timingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the response status, defaulting to 200 when the
// handler never wrote one explicitly.
func (w *timingResponseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}

// Flush passes through to the underlying writer when it supports
// streaming responses.
func (w *timingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
