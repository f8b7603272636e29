package middleware

import (
	"log/slog"
	"sync/atomic"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/tracing"
)

// SpanHolder hands the middleware its span manager through an atomic
// pointer, so a config reload can swap in a manager with a new header
// policy without restarting the server or racing in-flight requests.
type SpanHolder struct {
	current atomic.Pointer[tracing.SpanManager]
}

// NewSpanHolder creates a holder seeded with sm.
func NewSpanHolder(sm *tracing.SpanManager) *SpanHolder {
	h := &SpanHolder{}
	h.current.Store(sm)
	return h
}

// Load returns the current span manager.
func (h *SpanHolder) Load() *tracing.SpanManager {
	return h.current.Load()
}

// Swap replaces the span manager. In-flight requests keep the manager
// they started with.
func (h *SpanHolder) Swap(sm *tracing.SpanManager) {
	h.current.Store(sm)
}

// OnReload returns a callback for config.Watcher that rebuilds the span
// manager from the reloaded configuration.
func (h *SpanHolder) OnReload(logger *slog.Logger) func(*config.Config) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(cfg *config.Config) {
		h.Swap(tracing.NewSpanManager(*cfg, logger))
		logger.Info("span enrichment policy reloaded",
			"capture_headers", len(cfg.Middleware.CaptureHeaders),
			"header_patterns", len(cfg.Middleware.HeaderPatterns),
		)
	}
}
