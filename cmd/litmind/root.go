package main

import (
	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "litmind",
	Short: "Book discovery and assisted reading with translation, narration, and scene art",
	Long: `Litmind is a book discovery and reading companion built on the
Google Books catalog.

It provides:
  - Catalog search and paged reading of book previews
  - On-demand page translation into 18 languages
  - Spoken narration of the current page
  - AI-generated scene imagery for the page being read
  - A reading assistant chat grounded in the open book`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.litmind/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "litmind home directory (default: ~/.litmind)",
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
