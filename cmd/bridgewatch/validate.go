package main

import (
	"fmt"

	"github.com/jpalmerr/bridgewatch"
	"github.com/jpalmerr/bridgewatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without polling.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a bridgewatch configuration file without contacting the bridge.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  bridgewatch validate -c config.yaml
  bridgewatch validate --config /etc/bridgewatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return fmt.Errorf("required flag \"config\" not set")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m, err := bridgewatch.New(config.BuildOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Address:        %s\n", m.Address())
	fmt.Fprintf(out, "  Status URL:     %s\n", m.URL())
	fmt.Fprintf(out, "  Poll interval:  %s\n", m.PollInterval())
	fmt.Fprintf(out, "  Max duration:   %s (%d checks max)\n", m.MaxDuration(), m.MaxIterations())
	fmt.Fprintf(out, "  Target:         %v\n", cfg.TargetStatuses)

	return nil
}
