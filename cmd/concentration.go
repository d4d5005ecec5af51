package cmd

import (
	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/spf13/cobra"
)

// concentrationCmd measures how unequal each governance activity is.
var concentrationCmd = &cobra.Command{
	Use:   "concentration [data-dir]",
	Short: "Show how concentrated merges, reviews and releases are.",
	Long: `Compute the Gini coefficient, the Herfindahl-Hirschman index and top-N
shares of every governance activity.

Activities:
- merges         who pressed the merge button
- reviews        who reviewed
- releases       who signed releases
- contributions  who authored pull requests
- comments       who commented, on GitHub, the mailing list and IRC
- nacks          who objected

The maintainer share is the fraction of activity done by participants who
were maintainers when they acted.

Examples:
  # Concentration of every activity
  govscope concentration ./data

  # Only merges and releases since 2015
  govscope concentration ./data --activities merges,releases --start 2015

  # Save the result document as well
  govscope concentration ./data --output-dir results`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteConcentration(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run concentration analysis", err)
		}
	},
}
