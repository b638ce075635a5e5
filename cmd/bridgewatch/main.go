// Package main is the entry point for the bridgewatch CLI.
//
// Bridgewatch can be used as a library (SDK) or run as a standalone binary.
// Without a subcommand the binary watches a deposit address until a
// transaction completes or the session times out.
//
// Usage:
//
//	bridgewatch                          # Watch the default address
//	bridgewatch --address <addr>         # Watch a specific address
//	bridgewatch -c config.yaml           # Watch using a config file
//	bridgewatch validate -c config.yaml  # Validate configuration
//	bridgewatch version                  # Show version info
//
// Exit codes:
//
//	0 - a COMPLETED transaction was found
//	1 - timeout, interruption or configuration error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd watches a bridge deposit when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "bridgewatch",
	Short: "Watch a bridge deposit until it completes",
	Long: `Bridgewatch polls the bridge status API for a deposit address.

Every 30 seconds it requests /status/<address>, prints each transaction it
finds, and exits as soon as one reaches COMPLETED. After 5 minutes without
a completed transaction it gives up and exits with status 1.

Quick start:
  bridgewatch --address FKxyytNAYZRAZt86hgGQLmdShrgwtsLDxgSLdH9KRoT7

Example config:
  address: ${BRIDGE_ADDRESS}
  poll_interval: 30s
  max_duration: 5m
  request_timeout: 10s
  listen_port: 9464`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWatch,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// the timeout outcome has already been reported on stdout
		if !errors.Is(err, errTimeout) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this bridgewatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bridgewatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")
	rootCmd.AddCommand(versionCmd)
}
