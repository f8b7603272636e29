package config

import "time"

// Default values for configuration fields.
const (
	// Tracing defaults
	DefaultServiceVersion       = "1.0.0"
	DefaultEndpoint             = "localhost:4317"
	DefaultProtocol             = "grpc"
	DefaultEnvironment          = "development"
	DefaultTracingInsecure      = true
	DefaultTracingExportTimeout = 10 * time.Second

	// Correlation defaults
	DefaultCorrelationPropagation = true
	DefaultCorrelationGenerateID  = true

	// Middleware defaults
	DefaultMiddlewareEnabled          = true
	DefaultMiddlewareRecordExceptions = true

	// Client defaults
	DefaultClientEnabled = true

	// Metrics defaults
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultCorrelationHeaders are the inbound headers checked for a
// correlation ID, in priority order.
var DefaultCorrelationHeaders = []string{"x-correlation-id", "x-request-id"}

// DefaultCaptureHeaders is the default allow-list of request headers
// captured as span attributes.
var DefaultCaptureHeaders = []string{
	"x-correlation-id",
	"x-request-id",
	"user-agent",
	"content-type",
	"x-edge-location",
	"x-amz-cf-id",
}

// DefaultRedactHeaders is the default list of headers whose captured
// value is masked.
var DefaultRedactHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
	"x-auth-token",
}

// DefaultClientHeaderPatterns is the default wildcard capture list for
// outbound requests.
var DefaultClientHeaderPatterns = []string{"x-*"}

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called automatically by Load; call it directly when constructing
// a Config in code.
func ApplyDefaults(cfg *Config) {
	// Tracing
	if cfg.Tracing.ServiceVersion == "" {
		cfg.Tracing.ServiceVersion = DefaultServiceVersion
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultEndpoint
	}
	if cfg.Tracing.Protocol == "" {
		cfg.Tracing.Protocol = DefaultProtocol
	}
	if cfg.Tracing.Environment == "" {
		cfg.Tracing.Environment = DefaultEnvironment
	}
	if cfg.Tracing.ExportTimeout <= 0 {
		cfg.Tracing.ExportTimeout = DefaultTracingExportTimeout
	}

	// Correlation. An explicitly empty header list is preserved so that
	// validation can reject it when generate_id is off.
	if cfg.Tracing.Correlation.Headers == nil {
		cfg.Tracing.Correlation.Headers = append([]string(nil), DefaultCorrelationHeaders...)
	}

	// Middleware header policy
	if cfg.Middleware.CaptureHeaders == nil {
		cfg.Middleware.CaptureHeaders = append([]string(nil), DefaultCaptureHeaders...)
	}
	if cfg.Middleware.RedactHeaders == nil {
		cfg.Middleware.RedactHeaders = append([]string(nil), DefaultRedactHeaders...)
	}

	// Client header policy
	if cfg.Client.HeaderPatterns == nil {
		cfg.Client.HeaderPatterns = append([]string(nil), DefaultClientHeaderPatterns...)
	}
	if cfg.Client.RedactHeaders == nil {
		cfg.Client.RedactHeaders = append([]string(nil), DefaultRedactHeaders...)
	}

	// Metrics
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
