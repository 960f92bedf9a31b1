// Joey is a multilingual voice assistant. It resolves one utterance at a
// time through a chain of priority overrides and an intent classifier, and
// answers in the user's chosen language.
//
// Usage:
//
//	joey run                      # console conversation on stdin/stdout
//	joey serve                    # HTTP/gRPC dispatch and health endpoints
//	joey classify "what time is it"
//	joey ask --addr localhost:50051 "hindi mode on"
//	joey --config /path/to/joey.yaml <command>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/joey/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "joey",
	Short:         "Multilingual voice assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		config.SetupLogging(loaded.Logging)
		cfg = loaded
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "joey %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/joey.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "joey:", err)
		cancel()
		os.Exit(1)
	}
}
