package main

import (
	"github.com/spf13/cobra"

	"github.com/byte-squad-abac/bookreader/internal/api"
	"github.com/byte-squad-abac/bookreader/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "bookreader",
	Short: "Virtualized document reader server for paginated books",
	Long: `Bookreader hosts reading sessions for paginated documents (PDF, EPUB,
DOCX, TXT) behind an HTTP API.

Each open document gets a reader that:
  - Estimates and measures page heights for virtualized rendering
  - Tracks the visible page window as the viewport scrolls
  - Handles page jumps, swipes, and keyboard navigation
  - Records reading progress to a session store`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bookreader/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "bookreader home directory (default: ~/.bookreader)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
