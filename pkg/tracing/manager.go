package tracing

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"auriga-hq/tracewire/pkg/config"
)

// State describes the lifecycle of a Manager.
type State int

const (
	// StateUninitialized is the state before Setup has been called.
	StateUninitialized State = iota

	// StateReady means the export pipeline is installed and spans flow
	// to the collector.
	StateReady

	// StateDisabled means backend setup failed or the manager was shut
	// down; the engine keeps running without telemetry.
	StateDisabled
)

// ErrNotInitialized is returned by Tracer and Provider before a
// successful Setup.
var ErrNotInitialized = errors.New("tracing not initialized: call Setup first")

// Manager owns the OpenTelemetry backend lifecycle: building the trace
// resource, sampler, and OTLP export pipeline, installing it as the
// process-wide default, and tearing it down again.
//
// Setup failure is isolated into the Disabled state and never surfaces
// to the caller as an error; a service must start even when its
// collector is unreachable.
type Manager struct {
	cfg    config.TracingConfig
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	conn     *grpc.ClientConn
}

// NewManager creates a Manager for the given tracing configuration.
// Call Setup to install the export pipeline.
func NewManager(cfg config.TracingConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
	}
}

// Setup builds the trace resource, sampler and OTLP exporter, registers
// the export pipeline, and installs it as the global tracer provider.
// It returns true on success. Any failure is caught, logged, and leaves
// the manager in the Disabled state with a false return; it never
// propagates an error or panic to the caller.
func (m *Manager) Setup(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateReady {
		return true
	}

	m.logger.Info("setting up tracing",
		"service", m.cfg.ServiceName,
		"endpoint", m.cfg.Endpoint,
		"protocol", m.cfg.Protocol,
	)

	provider, err := m.buildProvider(ctx)
	if err != nil {
		m.logger.Warn("tracing setup failed, continuing without telemetry", "error", err)
		m.state = StateDisabled
		return false
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	m.provider = provider
	m.tracer = provider.Tracer(m.cfg.ServiceName, trace.WithInstrumentationVersion(m.cfg.ServiceVersion))
	m.state = StateReady

	m.logger.Info("tracing setup successful", "service", m.cfg.ServiceName)
	return true
}

// buildProvider constructs the resource, sampler, exporter, and tracer
// provider described by the configuration.
func (m *Manager) buildProvider(ctx context.Context) (provider *sdktrace.TracerProvider, err error) {
	// The OTLP client libraries are external collaborators; a panic in
	// any of them must degrade, not crash, the host service.
	defer func() {
		if r := recover(); r != nil {
			provider = nil
			err = fmt.Errorf("tracing setup panicked: %v", r)
		}
	}()

	res, err := m.buildResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	exporter, err := m.buildExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(m.buildSampler()),
	), nil
}

// buildResource assembles the resource descriptor identifying this
// service instance in exported traces.
func (m *Manager) buildResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(m.cfg.ServiceName),
		semconv.ServiceVersion(m.cfg.ServiceVersion),
		semconv.ServiceInstanceID(uuid.NewString()),
	}
	if m.cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(m.cfg.Environment))
	}
	for k, v := range m.cfg.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(ctx, resource.WithAttributes(attrs...))
}

// buildSampler returns the configured sampler. A configured sampling
// rate selects trace-ID-ratio sampling; otherwise every trace is
// sampled. Both are wrapped in ParentBased so a parent span's decision
// is respected across service boundaries.
func (m *Manager) buildSampler() sdktrace.Sampler {
	if m.cfg.SamplingRate != nil {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(*m.cfg.SamplingRate))
	}
	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

// buildExporter creates the OTLP span exporter for the configured
// protocol and endpoint.
func (m *Manager) buildExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch m.cfg.Protocol {
	case "grpc":
		return m.buildGRPCExporter(ctx)
	case "http":
		return m.buildHTTPExporter(ctx)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", m.cfg.Protocol)
	}
}

// buildGRPCExporter creates an OTLP gRPC exporter over a connection
// the manager dials itself. gRPC connects lazily, so readiness is
// checked explicitly: an unreachable collector fails Setup here instead
// of surfacing on the first export.
func (m *Manager) buildGRPCExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	creds := credentials.NewTLS(&tls.Config{})
	if m.cfg.InsecureEnabled() {
		creds = insecure.NewCredentials()
	}

	conn, err := grpc.NewClient(m.cfg.Endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to dial collector at %s: %w", m.cfg.Endpoint, err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ExportTimeout)
	defer cancel()
	if err := waitForConnection(dialCtx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collector unreachable at %s: %w", m.cfg.Endpoint, err)
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithGRPCConn(conn),
		otlptracegrpc.WithTimeout(m.cfg.ExportTimeout),
	))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
	}
	m.conn = conn
	return exporter, nil
}

// waitForConnection drives the client connection until it reports
// ready. A transient failure counts as unreachable: the collector
// either accepts the connection within the deadline or tracing stays
// disabled.
func waitForConnection(ctx context.Context, conn *grpc.ClientConn) error {
	conn.Connect()
	for {
		switch state := conn.GetState(); state {
		case connectivity.Ready:
			return nil
		case connectivity.TransientFailure, connectivity.Shutdown:
			return fmt.Errorf("connection entered state %s", state)
		default:
			if !conn.WaitForStateChange(ctx, state) {
				return ctx.Err()
			}
		}
	}
}

// buildHTTPExporter creates an OTLP HTTP exporter.
func (m *Manager) buildHTTPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(m.cfg.Endpoint),
		otlptracehttp.WithTimeout(m.cfg.ExportTimeout),
	}
	if m.cfg.InsecureEnabled() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// Tracer returns the configured tracer. It fails with ErrNotInitialized
// before a successful Setup.
func (m *Manager) Tracer() (trace.Tracer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady || m.tracer == nil {
		return nil, ErrNotInitialized
	}
	return m.tracer, nil
}

// Provider returns the tracer provider handle. It fails with
// ErrNotInitialized before a successful Setup.
func (m *Manager) Provider() (*sdktrace.TracerProvider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady || m.provider == nil {
		return nil, ErrNotInitialized
	}
	return m.provider, nil
}

// IsReady reports whether the export pipeline is installed. It never
// panics and never returns an error.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateReady
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Shutdown flushes pending spans and releases the export pipeline. It is
// idempotent: safe to call repeatedly, after a failed Setup, or before
// Setup was called at all.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider := m.provider
	conn := m.conn
	m.provider = nil
	m.tracer = nil
	m.conn = nil
	m.state = StateDisabled

	if conn != nil {
		defer conn.Close()
	}
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		m.logger.Warn("error during tracing shutdown", "error", err)
		return fmt.Errorf("tracing shutdown error: %w", err)
	}

	m.logger.Info("tracing shut down")
	return nil
}
