package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/bridgewatch"
	"github.com/jpalmerr/bridgewatch/config"
	"github.com/spf13/cobra"
)

// errTimeout is returned when the session ends without a match.
var errTimeout = errors.New("no matching transaction before deadline")

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func init() {
	rootCmd.Flags().String("address", "", "deposit address to watch (overrides config)")
	rootCmd.Flags().Int("listen-port", 0, "serve the status API and /metrics on this port (overrides config)")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

// loadConfig reads the --config file when given, otherwise the defaults,
// then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f := cmd.Flags().Lookup("address"); f != nil && f.Changed {
		cfg.Address = f.Value.String()
	}
	if f := cmd.Flags().Lookup("listen-port"); f != nil && f.Changed {
		cfg.ListenPort, _ = cmd.Flags().GetInt("listen-port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Debug("config loaded",
		"address", cfg.Address,
		"base_url", cfg.BaseURL,
		"poll_interval", cfg.PollInterval.Duration().String(),
		"max_duration", cfg.MaxDuration.Duration().String(),
	)

	opts := append(config.BuildOptions(cfg),
		bridgewatch.WithLogger(logger),
		bridgewatch.WithOutput(cmd.OutOrStdout()),
	)

	m, err := bridgewatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := m.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d iteration(s)", result.Iterations)
		}
		return err
	}

	if !result.Found {
		return errTimeout
	}

	logger.Debug("watch complete",
		"session_id", result.SessionID,
		"iterations", result.Iterations,
		"elapsed", result.Elapsed.String(),
	)
	return nil
}
