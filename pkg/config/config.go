package config

import "time"

// Config is the root configuration for the tracewire engine. It is
// typically loaded from a YAML file with Load or LoadWithEnvOverrides.
type Config struct {
	// Tracing contains distributed tracing and correlation configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Middleware contains inbound request tracing middleware configuration.
	Middleware MiddlewareConfig `yaml:"middleware"`

	// Client contains outbound HTTP client instrumentation configuration.
	Client ClientConfig `yaml:"client"`

	// Metrics contains engine metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// ServiceName is the name of the service being traced. Required.
	ServiceName string `yaml:"service_name"`

	// ServiceVersion is the version of the service reported in the
	// trace resource.
	// Default: "1.0.0"
	ServiceVersion string `yaml:"service_version"`

	// Endpoint is the OpenTelemetry collector endpoint.
	// Example: "localhost:4317" (grpc), "localhost:4318" (http)
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Protocol selects the OTLP transport.
	// Options: "grpc", "http"
	// Default: "grpc"
	Protocol string `yaml:"protocol"`

	// SamplingRate is the fraction of traces to sample (0.0 to 1.0).
	// When nil, the SDK default parent-based always-on sampler is used.
	SamplingRate *float64 `yaml:"sampling_rate"`

	// Environment is the deployment environment reported in the
	// trace resource (e.g. "development", "production").
	// Default: "development"
	Environment string `yaml:"environment"`

	// ResourceAttributes are additional attributes attached to the
	// trace resource.
	ResourceAttributes map[string]string `yaml:"resource_attributes"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure *bool `yaml:"insecure"`

	// ExportTimeout is the timeout for OTLP exports.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`

	// Correlation contains correlation ID handling configuration.
	Correlation CorrelationConfig `yaml:"correlation"`
}

// CorrelationConfig contains correlation ID handling configuration.
type CorrelationConfig struct {
	// Headers are the inbound header names checked for a correlation ID,
	// in priority order. Lookups are case-insensitive.
	// Default: ["x-correlation-id", "x-request-id"]
	Headers []string `yaml:"headers"`

	// Propagation controls whether the correlation ID is forwarded on
	// outgoing requests.
	// Default: true
	Propagation *bool `yaml:"propagation"`

	// GenerateID controls whether a new correlation ID is generated when
	// none of the configured headers is present.
	// Default: true
	GenerateID *bool `yaml:"generate_id"`
}

// MiddlewareConfig contains inbound request tracing middleware configuration.
type MiddlewareConfig struct {
	// Enabled controls whether the middleware enriches requests at all.
	// When false requests pass straight through to the handler.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// RecordExceptions controls whether handler panics are recorded on
	// the active span before being re-raised.
	// Default: true
	RecordExceptions *bool `yaml:"record_exceptions"`

	// ServicePort is the port reported in the service.port span attribute.
	// Zero means the attribute is skipped.
	ServicePort int `yaml:"service_port"`

	// CaptureHeaders is the explicit allow-list of request headers to
	// capture as span attributes. Case-insensitive.
	CaptureHeaders []string `yaml:"capture_headers"`

	// HeaderPatterns are wildcard patterns ("*" matches any sequence)
	// matched against request header names for capture.
	HeaderPatterns []string `yaml:"header_patterns"`

	// RedactHeaders are headers whose captured value is replaced with
	// "[REDACTED]". Redaction is evaluated independently of capture.
	RedactHeaders []string `yaml:"redact_headers"`
}

// ClientConfig contains outbound HTTP client instrumentation configuration.
type ClientConfig struct {
	// Enabled controls whether requests issued through the correlated
	// client carry propagation headers.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// CaptureHeaders is the explicit allow-list of outbound headers to
	// capture as span attributes.
	CaptureHeaders []string `yaml:"capture_headers"`

	// HeaderPatterns are wildcard patterns matched against outbound
	// header names for capture.
	// Default: ["x-*"]
	HeaderPatterns []string `yaml:"header_patterns"`

	// RedactHeaders are outbound headers whose captured value is masked.
	RedactHeaders []string `yaml:"redact_headers"`
}

// MetricsConfig contains engine metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether prometheus metrics are collected.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path the metrics handler is served on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// PropagationEnabled reports whether correlation propagation is on,
// applying the default when the field is unset.
func (c *CorrelationConfig) PropagationEnabled() bool {
	if c.Propagation == nil {
		return DefaultCorrelationPropagation
	}
	return *c.Propagation
}

// GenerateEnabled reports whether generate-on-missing is on, applying
// the default when the field is unset.
func (c *CorrelationConfig) GenerateEnabled() bool {
	if c.GenerateID == nil {
		return DefaultCorrelationGenerateID
	}
	return *c.GenerateID
}

// MiddlewareEnabled reports whether the inbound middleware is active.
func (c *MiddlewareConfig) MiddlewareEnabled() bool {
	if c.Enabled == nil {
		return DefaultMiddlewareEnabled
	}
	return *c.Enabled
}

// ExceptionsEnabled reports whether handler panics are recorded on spans.
func (c *MiddlewareConfig) ExceptionsEnabled() bool {
	if c.RecordExceptions == nil {
		return DefaultMiddlewareRecordExceptions
	}
	return *c.RecordExceptions
}

// ClientEnabled reports whether outbound propagation is active.
func (c *ClientConfig) ClientEnabled() bool {
	if c.Enabled == nil {
		return DefaultClientEnabled
	}
	return *c.Enabled
}

// InsecureEnabled reports whether the exporter connection skips TLS.
func (c *TracingConfig) InsecureEnabled() bool {
	if c.Insecure == nil {
		return DefaultTracingInsecure
	}
	return *c.Insecure
}

// MetricsEnabled reports whether engine metrics collection is active.
func (c *MetricsConfig) MetricsEnabled() bool {
	if c.Enabled == nil {
		return DefaultMetricsEnabled
	}
	return *c.Enabled
}
