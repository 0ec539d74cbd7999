package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pageflow",
	Short: "pageflow hosts pages behind an exception-filter pipeline",
	Long: `pageflow routes requests to registered pages. Every invocation runs through
an ordered pipeline of exception filters that may observe, replace or swallow
the errors a page produces.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path of the config file (default ./pageflow.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("manifest", "", "Route manifest overriding the configured one")
}
