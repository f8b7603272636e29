package instrument

import (
	"log/slog"
	"net/http"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/middleware"
	"auriga-hq/tracewire/pkg/telemetry/metrics"
	"auriga-hq/tracewire/pkg/tracing"
)

// HTTPServer wraps handler with the full tracing middleware chain and
// returns the instrumented handler along with the span holder feeding
// it, so callers can plug the holder into a config watcher.
//
// It never fails: a nil handler is logged and returned as-is, matching
// the degrade-on-missing contract of every registration call in this
// package. collector and logger may be nil.
func HTTPServer(cfg *config.Config, handler http.Handler, collector *metrics.Collector, logger *slog.Logger) (http.Handler, *middleware.SpanHolder) {
	if logger == nil {
		logger = slog.Default()
	}
	if handler == nil {
		logger.Warn("http instrumentation skipped: no handler provided")
		return nil, nil
	}

	holder := middleware.NewSpanHolder(tracing.NewSpanManager(*cfg, logger))
	instrumented := middleware.Instrument(handler,
		middleware.Tracing(cfg, holder, collector, logger),
	)
	return instrumented, holder
}

// Mux registers the metrics endpoint on mux when metrics are enabled.
// A nil mux or collector is logged and skipped.
func Mux(cfg *config.Config, mux *http.ServeMux, collector *metrics.Collector, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if mux == nil || collector == nil {
		logger.Warn("metrics endpoint registration skipped: missing mux or collector")
		return
	}
	if !cfg.Metrics.MetricsEnabled() {
		return
	}
	mux.Handle(cfg.Metrics.Path, collector.Handler())
}
