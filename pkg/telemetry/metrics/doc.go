// Package metrics exposes Prometheus metrics about the tracing
// pipeline: traced request counts and durations, enrichment failures,
// locally generated correlation IDs, and export pipeline readiness.
//
// All metrics live under the tracewire namespace on a private registry,
// so embedding services can merge or isolate them as they see fit.
package metrics
