// Package cmd implements the server commands for meli-seller-hub.
package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "meli-seller-hub",
	Short: "Sync and monitor Mercado Livre seller accounts",
	Long: "An API-first service that links Mercado Livre seller accounts via OAuth,\n" +
		"synchronizes profiles, products, and sales metrics, and exposes a\n" +
		"dashboard API with user management.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func newLogger(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(level),
	})
}
