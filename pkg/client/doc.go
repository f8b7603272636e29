// Package client provides an outbound HTTP client that keeps the
// correlation chain intact: the ID enriched onto the inbound request
// span is read back off the context and forwarded on exactly one
// header, alongside the W3C trace context.
package client
