package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "tracing.service_name").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateTracing(&cfg.Tracing)...)
	errs = append(errs, validateCorrelation(&cfg.Tracing.Correlation)...)
	errs = append(errs, validateHeaderPolicy("middleware", cfg.Middleware.HeaderPatterns)...)
	errs = append(errs, validateHeaderPolicy("client", cfg.Client.HeaderPatterns)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateTracing validates the tracing configuration section.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if cfg.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.service_name",
			Message: "service name is required",
		})
	}

	switch cfg.Protocol {
	case "grpc", "http":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.protocol",
			Message: fmt.Sprintf("unsupported protocol %q (valid: grpc, http)", cfg.Protocol),
		})
	}

	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "collector endpoint is required",
		})
	}

	if cfg.SamplingRate != nil {
		if *cfg.SamplingRate < 0.0 || *cfg.SamplingRate > 1.0 {
			errs = append(errs, FieldError{
				Field:   "tracing.sampling_rate",
				Message: fmt.Sprintf("sampling rate must be between 0.0 and 1.0, got %f", *cfg.SamplingRate),
			})
		}
	}

	return errs
}

// validateCorrelation validates the correlation configuration section.
// With generation disabled an empty header list can never resolve an ID,
// which makes the configuration useless.
func validateCorrelation(cfg *CorrelationConfig) []FieldError {
	var errs []FieldError

	if !cfg.GenerateEnabled() && len(cfg.Headers) == 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.correlation.headers",
			Message: "header list must be non-empty when generate_id is disabled",
		})
	}

	for i, h := range cfg.Headers {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("tracing.correlation.headers[%d]", i),
				Message: "header name must not be empty",
			})
		}
	}

	return errs
}

// validateHeaderPolicy validates a capture pattern list for a direction.
func validateHeaderPolicy(section string, patterns []string) []FieldError {
	var errs []FieldError

	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s.header_patterns[%d]", section, i),
				Message: "pattern must not be empty",
			})
		}
	}

	return errs
}
