// Package correlation resolves and propagates per-request correlation IDs.
//
// A correlation ID is an opaque string that ties together every span a
// request produces as it crosses service boundaries. The Manager extracts
// the ID from inbound headers in configured priority order, generates a
// fresh one when allowed, and builds the header set used to hand the ID
// to the next service in the chain.
package correlation

import (
	"net/http"

	"github.com/google/uuid"

	"auriga-hq/tracewire/pkg/config"
)

// Manager resolves correlation IDs from request headers and builds
// propagation headers for outbound calls. The zero value is not usable;
// construct with NewManager.
type Manager struct {
	cfg config.CorrelationConfig
}

// NewManager creates a Manager for the given correlation configuration.
func NewManager(cfg config.CorrelationConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Extract scans the configured header names in priority order and returns
// the first non-empty value. Lookups are case-insensitive. The second
// return value reports whether an ID was found.
func (m *Manager) Extract(h http.Header) (string, bool) {
	for _, name := range m.cfg.Headers {
		if v := h.Get(name); v != "" {
			return v, true
		}
	}
	return "", false
}

// Resolve returns the correlation ID for a request: the extracted inbound
// value when present, a freshly generated ID when extraction fails and
// generation is enabled, otherwise unresolved (ok=false). The resolved ID
// is immutable for the lifetime of the request.
func (m *Manager) Resolve(h http.Header) (string, bool) {
	if id, ok := m.Extract(h); ok {
		return id, true
	}
	if m.cfg.GenerateEnabled() {
		return NewID(), true
	}
	return "", false
}

// PropagationHeaders returns the headers used to forward the correlation
// ID on an outbound call. It returns an empty map when the ID is empty or
// propagation is disabled. Exactly one header is emitted, the highest
// priority configured name, to avoid duplicate header bloat across hops.
func (m *Manager) PropagationHeaders(id string) map[string]string {
	if id == "" || !m.cfg.PropagationEnabled() {
		return map[string]string{}
	}

	name := "x-correlation-id"
	if len(m.cfg.Headers) > 0 {
		name = m.cfg.Headers[0]
	}
	return map[string]string{name: id}
}

// NewID generates a new unique correlation ID (UUID v4, 36 characters).
func NewID() string {
	return uuid.NewString()
}
