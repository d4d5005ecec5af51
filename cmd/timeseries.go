package cmd

import (
	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/spf13/cobra"
)

// timeseriesCmd tracks concentration year over year.
var timeseriesCmd = &cobra.Command{
	Use:   "timeseries [data-dir]",
	Short: "Track governance concentration year over year.",
	Long: `Bucket every activity by calendar year and compute the concentration of
each bucket, alongside yearly record counts, merge counts and the median
days to decision.

Use this to see whether decision power is consolidating or spreading out.

Examples:
  # Yearly Gini of every activity
  govscope timeseries ./data

  # Yearly merge concentration since 2010 as JSON
  govscope timeseries ./data --activities merges --start 2010 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTimeseries(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run timeseries analysis", err)
		}
	},
}
