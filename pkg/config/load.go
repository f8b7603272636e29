package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadWithEnvOverrides for that functionality.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TRACEWIRE_SECTION_FIELD (e.g., TRACEWIRE_TRACING_ENDPOINT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration entirely from environment variables with
// defaults applied, for services that ship no configuration file.
// SERVICE_NAME is honored as an alias for TRACEWIRE_TRACING_SERVICE_NAME.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	if val := os.Getenv("SERVICE_NAME"); val != "" {
		cfg.Tracing.ServiceName = val
	}
	if val := os.Getenv("SERVICE_VERSION"); val != "" {
		cfg.Tracing.ServiceVersion = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := os.Getenv("ENVIRONMENT"); val != "" {
		cfg.Tracing.Environment = val
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format TRACEWIRE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Tracing overrides
	if val := os.Getenv("TRACEWIRE_TRACING_SERVICE_NAME"); val != "" {
		cfg.Tracing.ServiceName = val
	}
	if val := os.Getenv("TRACEWIRE_TRACING_SERVICE_VERSION"); val != "" {
		cfg.Tracing.ServiceVersion = val
	}
	if val := os.Getenv("TRACEWIRE_TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := os.Getenv("TRACEWIRE_TRACING_PROTOCOL"); val != "" {
		cfg.Tracing.Protocol = val
	}
	if val := os.Getenv("TRACEWIRE_TRACING_SAMPLING_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SamplingRate = &f
		}
	}
	if val := os.Getenv("TRACEWIRE_TRACING_ENVIRONMENT"); val != "" {
		cfg.Tracing.Environment = val
	}
	if val := os.Getenv("TRACEWIRE_TRACING_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Insecure = &b
		}
	}
	if val := os.Getenv("TRACEWIRE_TRACING_EXPORT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Tracing.ExportTimeout = d
		}
	}

	// Correlation overrides
	if val := os.Getenv("TRACEWIRE_CORRELATION_HEADERS"); val != "" {
		cfg.Tracing.Correlation.Headers = splitList(val)
	}
	if val := os.Getenv("TRACEWIRE_CORRELATION_PROPAGATION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Correlation.Propagation = &b
		}
	}
	if val := os.Getenv("TRACEWIRE_CORRELATION_GENERATE_ID"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Correlation.GenerateID = &b
		}
	}

	// Middleware overrides
	if val := os.Getenv("TRACEWIRE_MIDDLEWARE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Middleware.Enabled = &b
		}
	}
	if val := os.Getenv("TRACEWIRE_MIDDLEWARE_SERVICE_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Middleware.ServicePort = i
		}
	}
	if val := os.Getenv("TRACEWIRE_MIDDLEWARE_CAPTURE_HEADERS"); val != "" {
		cfg.Middleware.CaptureHeaders = splitList(val)
	}
	if val := os.Getenv("TRACEWIRE_MIDDLEWARE_HEADER_PATTERNS"); val != "" {
		cfg.Middleware.HeaderPatterns = splitList(val)
	}
	if val := os.Getenv("TRACEWIRE_MIDDLEWARE_REDACT_HEADERS"); val != "" {
		cfg.Middleware.RedactHeaders = splitList(val)
	}

	// Client overrides
	if val := os.Getenv("TRACEWIRE_CLIENT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Client.Enabled = &b
		}
	}

	// Metrics overrides
	if val := os.Getenv("TRACEWIRE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("TRACEWIRE_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
}

// splitList splits a comma-separated environment value into a clean list.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
