// Package cli implements the cerebro command line interface.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cerebro/internal/logger"
)

var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "cerebro",
	Short: "Local retrieval index and semantic query router",
	Long: `cerebro ingests a folder of documents into a local vector index and
routes natural-language queries to the most relevant domain, returning
the matching passages for downstream use.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Provider API keys may live in a local .env file.
		_ = godotenv.Load()
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.cerebro/config.toml)")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
