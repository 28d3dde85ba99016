package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "throttlegate",
	Short: "Throttlegate - rate limiting decision service for an AI inference gateway",
	Long: `Throttlegate evaluates sliding-window rate limits across tenant, API key,
model, and model tier scopes and returns an admit/deny decision.

It is a decision service, not a proxy: callers send identity and model
context to /rate-limit/check and receive an allow/deny decision to act on.`,
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
