// Package instrument provides one-call registration of tracing onto
// transport targets: HTTP handler chains, gRPC servers and clients, and
// the metrics endpoint.
//
// Every registration call degrades instead of failing: a missing or nil
// target is logged and skipped, so embedding services never have their
// startup blocked by instrumentation.
package instrument
