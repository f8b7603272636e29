package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/tracing"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Tracing.ServiceName = "checkout"
	cfg.Middleware.ServicePort = 8443
	config.ApplyDefaults(cfg)
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// installRecorder points the global tracer provider at an in-memory
// recorder for the duration of the test.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func newHandler(t *testing.T, cfg *config.Config, next http.Handler) http.Handler {
	t.Helper()
	holder := NewSpanHolder(tracing.NewSpanManager(*cfg, quietLogger()))
	return Tracing(cfg, holder, nil, quietLogger())(next)
}

func TestTracingRoundTrip(t *testing.T) {
	installRecorder(t)
	cfg := testConfig()

	// The handler reads the correlation ID back off the request span,
	// proving the context bridge works end to end.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, tracing.CorrelationIDFromContext(r.Context()))
	})
	handler := newHandler(t, cfg, next)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Correlation-Id", "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := rr.Body.String(); got != "req-42" {
		t.Errorf("handler saw correlation ID %q, want req-42", got)
	}
	if got := rr.Header().Get(HeaderCorrelationID); got != "req-42" {
		t.Errorf("X-Correlation-ID = %q, want req-42", got)
	}
	if got := rr.Header().Get(HeaderServiceName); got != "checkout" {
		t.Errorf("X-Service-Name = %q, want checkout", got)
	}

	elapsed := rr.Header().Get(HeaderProcessingTime)
	if elapsed == "" {
		t.Fatal("X-Processing-Time not set")
	}
	if secs, err := strconv.ParseFloat(elapsed, 64); err != nil || secs < 0 {
		t.Errorf("X-Processing-Time = %q, want non-negative seconds", elapsed)
	}
}

func TestTracingGeneratesID(t *testing.T) {
	installRecorder(t)
	handler := newHandler(t, testConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))

	id := rr.Header().Get(HeaderCorrelationID)
	if len(id) != 36 {
		t.Errorf("generated X-Correlation-ID %q has length %d, want 36", id, len(id))
	}
}

func TestTracingTimingWithoutExplicitWrite(t *testing.T) {
	installRecorder(t)

	// The handler returns without calling Write or WriteHeader, leaving
	// net/http to finalize the implicit 200 after it returns.
	handler := newHandler(t, testConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))

	elapsed := rr.Header().Get(HeaderProcessingTime)
	if elapsed == "" {
		t.Fatal("X-Processing-Time not set for a handler that never wrote")
	}
	if secs, err := strconv.ParseFloat(elapsed, 64); err != nil || secs < 0 {
		t.Errorf("X-Processing-Time = %q, want non-negative seconds", elapsed)
	}
}

func TestTracingDegradedBackend(t *testing.T) {
	// No recording provider installed, the situation after a failed
	// tracing setup. Requests must still complete, just unenriched.
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(noop.NewTracerProvider())
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	handler := newHandler(t, testConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Correlation-Id", "req-42")
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("degraded request = (%d, %q), want (200, ok)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get(HeaderCorrelationID); got != "" {
		t.Errorf("X-Correlation-ID = %q, want empty on non-recording span", got)
	}
}

func TestTracingDisabled(t *testing.T) {
	cfg := testConfig()
	disabled := false
	cfg.Middleware.Enabled = &disabled

	handler := newHandler(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get(HeaderServiceName); got != "" {
		t.Errorf("disabled middleware stamped X-Service-Name = %q", got)
	}
}

func TestTracingHandlerPanic(t *testing.T) {
	recorder := installRecorder(t)
	handler := newHandler(t, testConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("orders table gone")
	}))

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	}()

	// The panic must escape the middleware unchanged.
	if recovered != "orders table gone" {
		t.Fatalf("recovered %v, want the handler's panic value", recovered)
	}

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", ended[0].Status().Code)
	}
	var sawException bool
	for _, ev := range ended[0].Events() {
		if ev.Name == "exception" {
			sawException = true
		}
	}
	if !sawException {
		t.Error("handler panic not recorded as an exception event")
	}
}

func TestTracingHandlerPanicRecordingDisabled(t *testing.T) {
	recorder := installRecorder(t)
	cfg := testConfig()
	off := false
	cfg.Middleware.RecordExceptions = &off

	handler := newHandler(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	if ended[0].Status().Code == codes.Error {
		t.Error("exception recorded despite record_exceptions=false")
	}
}

func TestTracingFallsBackWhenMiddlewareFails(t *testing.T) {
	installRecorder(t)
	cfg := testConfig()

	// A holder with no span manager makes the instrumented path blow up
	// before the handler runs.
	handler := Tracing(cfg, NewSpanHolder(nil), nil, quietLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "served")
		}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 from the bare handler", rr.Code)
	}
	if rr.Body.String() != "served" {
		t.Errorf("body = %q, want the handler's response", rr.Body.String())
	}
}

func TestTracingBareFallbackPanic(t *testing.T) {
	installRecorder(t)
	handler := Tracing(testConfig(), NewSpanHolder(nil), nil, quietLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestTracingStatusAttribute(t *testing.T) {
	recorder := installRecorder(t)
	handler := newHandler(t, testConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	var status int64 = -1
	for _, kv := range ended[0].Attributes() {
		if string(kv.Key) == "http.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	if status != http.StatusBadGateway {
		t.Errorf("http.status_code = %d, want 502", status)
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error for a 5xx response", ended[0].Status().Code)
	}
}

func TestInstrumentOrder(t *testing.T) {
	var order []string
	hook := func(name string) RequestHook {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Instrument(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}),
		hook("outer"), hook("inner"),
	)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("call order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("call order = %v, want %v", order, want)
		}
	}
}
