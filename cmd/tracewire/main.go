// Tracewire is a correlation-aware tracing toolkit for HTTP and gRPC
// services.
//
// It propagates correlation IDs across service boundaries, enriches
// request spans with request metadata and policy-filtered headers, and
// exports traces over OTLP.
//
// Usage:
//
//	# Start the demo server with default configuration
//	tracewire run
//
//	# Start with a custom configuration file
//	tracewire run --config /path/to/config.yaml
//
//	# Check a configuration file
//	tracewire validate --config /path/to/config.yaml
//
//	# Show version information
//	tracewire version
package main

func main() {
	Execute()
}
