// Package telemetry groups the observability surfaces of the tracing
// engine itself.
//
// # Components
//
//   - logging: correlation-aware structured logging on slog
//   - metrics: Prometheus metrics about the tracing pipeline
//
// Trace export and span enrichment live in the top-level tracing
// package; this tree covers how the engine reports on its own behavior.
package telemetry
