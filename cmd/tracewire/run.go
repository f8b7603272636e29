package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/instrument"
	"auriga-hq/tracewire/pkg/telemetry/logging"
	"auriga-hq/tracewire/pkg/telemetry/metrics"
	"auriga-hq/tracewire/pkg/tracing"
)

var runFlags struct {
	listenAddress string
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the demo echo server",
	Long: `Start a small echo server with the full tracing stack attached: the
request middleware, the OTLP export pipeline, the metrics endpoint, and
optional hot reload of the header capture policy.

The server answers every request with its resolved correlation ID, which
makes it a convenient probe for verifying propagation across a mesh.

Examples:
  # Start with default config
  tracewire run

  # Override the listen address
  tracewire run --listen 0.0.0.0:8080

  # Pick up header policy changes without restarting
  tracewire run --watch`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload header policy on config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	logger, err := logging.New(logging.Config{Level: logLevel})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Export pipeline. A failed setup leaves the server running
	// untraced.
	manager := tracing.NewManager(cfg.Tracing, logger)
	ready := manager.Setup(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(cfg.Metrics, nil)
	collector.SetTracingReady(ready)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, tracing.CorrelationIDFromContext(r.Context()))
	})

	mux := http.NewServeMux()
	handler, holder := instrument.HTTPServer(cfg, echo, collector, logger)
	mux.Handle("/", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	instrument.Mux(cfg, mux, collector, logger)

	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, holder.OnReload(logger)); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	addr := runFlags.listenAddress
	if addr == "" {
		port := cfg.Middleware.ServicePort
		if port == 0 {
			port = 8080
		}
		addr = fmt.Sprintf(":%d", port)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"address", addr,
			"service", cfg.Tracing.ServiceName,
			"tracing_ready", ready,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
