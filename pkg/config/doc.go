// Package config provides configuration loading, validation, and hot-reload
// for the tracewire engine.
//
// # Configuration Sources
//
// Configuration is loaded from a YAML file, optionally overridden by
// environment variables, and finally validated:
//
//	cfg, err := config.LoadWithEnvOverrides("tracewire.yaml")
//
// Environment variables follow the TRACEWIRE_SECTION_FIELD convention
// (e.g. TRACEWIRE_TRACING_ENDPOINT) and always take precedence over file
// values. Services without a configuration file can use config.FromEnv,
// which also honors the conventional SERVICE_NAME, SERVICE_VERSION and
// OTEL_EXPORTER_OTLP_ENDPOINT variables.
//
// # Sections
//
//   - tracing: collector endpoint, protocol, sampling, resource attributes
//   - tracing.correlation: correlation header list, propagation, generation
//   - middleware: inbound enrichment toggle and header capture policy
//   - client: outbound propagation toggle and header capture policy
//   - metrics: prometheus metrics toggle and path
//
// # Validation
//
// Validate collects every violation into a ValidationError rather than
// stopping at the first, so operators can fix a configuration file in one
// pass. The one structural invariant worth calling out: when
// correlation.generate_id is disabled the correlation header list must be
// non-empty, otherwise no request could ever resolve an ID.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and swaps the
// global singleton on successful reloads. Subscribers receive the new
// Config through the Watch callback; a reload that fails validation is
// logged and the previous configuration stays in effect.
package config
