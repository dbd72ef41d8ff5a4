// Package cli provides the clipbrd command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services used by commands. Set by ensureServices at first use;
// tests swap in mocks directly.
var (
	pipelineService driving.Pipeline
	indexService    driving.IndexManager
	configService   driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "clipbrd",
	Short: "Clipboard question-answering assistant",
	Long: `Clipbrd watches your clipboard for questions, retrieves context from
your local documents, and answers via a remote model provider.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
