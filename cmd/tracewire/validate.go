package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"auriga-hq/tracewire/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file",
	Long: `Load a configuration file, apply defaults and environment overrides,
and run every validation rule. All field errors are reported together.

Examples:
  # Check the default config file
  tracewire validate

  # Check a specific file
  tracewire validate --config /etc/tracewire/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)

	var verr config.ValidationError
	if errors.As(err, &verr) {
		fmt.Printf("✗ %s is invalid (%d errors)\n", cfgFile, len(verr.Errors))
		for _, fieldErr := range verr.Errors {
			fmt.Printf("  - %s\n", fieldErr.Error())
		}
		return fmt.Errorf("validation failed")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	if verbose {
		fmt.Printf("  service:  %s (v%s, %s)\n",
			cfg.Tracing.ServiceName, cfg.Tracing.ServiceVersion, cfg.Tracing.Environment)
		fmt.Printf("  exporter: %s over %s\n", cfg.Tracing.Endpoint, cfg.Tracing.Protocol)
		fmt.Printf("  correlation headers: %v\n", cfg.Tracing.Correlation.Headers)
	}
	return nil
}
