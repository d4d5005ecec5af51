package cmd

import (
	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd runs every analysis and writes all result documents.
var reportCmd = &cobra.Command{
	Use:   "report [data-dir]",
	Short: "Run every analysis and write the result documents.",
	Long: `Enrich once, then run the concentration, network and timeseries steps
concurrently. Each step writes its own JSON result document into the output
directory (default "results"), stamped with the same run identifier.

A failing step still writes its document, with the error field set, and the
other steps carry on.

Examples:
  # Full report into ./results
  govscope report ./data

  # Full report with tracking in SQLite
  govscope report ./data --output-dir out --analysis-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run report", err)
		}
	},
}
