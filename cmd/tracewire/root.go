package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tracewire",
	Short: "Tracewire - correlation-aware request tracing",
	Long: `Tracewire keeps a correlation ID attached to every request as it moves
between services.

It provides:
  - Priority-ordered correlation ID extraction with UUID fallback
  - Span enrichment with request metadata and policy-filtered headers
  - OTLP trace export that degrades gracefully when the collector is down
  - An outbound HTTP client and gRPC interceptors that forward the ID`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
