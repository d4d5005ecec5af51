package cmd

import (
	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/spf13/cobra"
)

// networkCmd builds the influence networks and ranks participants.
var networkCmd = &cobra.Command{
	Use:   "network [data-dir]",
	Short: "Rank participants by centrality in the influence networks.",
	Long: `Build a weighted directed graph per relation and compute node centrality.

Relations:
- review         reviewer to pull request author
- merge          merger to pull request author
- communication  replier to the author being replied to

Each participant gets in and out strength, betweenness, closeness,
eigenvector centrality and PageRank. A metric that fails to converge is
zero for every node and listed under failed metrics.

Examples:
  # Every relation, top 25 participants
  govscope network ./data

  # The merge network only, as CSV
  govscope network ./data --relations merge --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNetwork(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run network analysis", err)
		}
	},
}
