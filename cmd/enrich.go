package cmd

import (
	"github.com/huangsam/govscope/core"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/spf13/cobra"
)

// enrichCmd runs the enrichment pipeline alone.
var enrichCmd = &cobra.Command{
	Use:   "enrich [data-dir]",
	Short: "Resolve identities and classify every cleaned record.",
	Long: `Read every cleaned record stream and derive the per-record governance fields.

Each record gets:
- Canonical participant names from the identity table
- Maintainer involvement at the time of each event
- A primary type, subtypes and importance from the keyword classifier
- Decision outcome, time to decision and review counts

Malformed lines and records with no identifier are counted and skipped.

Examples:
  # Summarize enrichment over a data directory
  govscope enrich ./data

  # Write the enriched records as JSON lines
  govscope enrich ./data --output json --output-file enriched.jsonl

  # Export a columnar copy for DuckDB or pandas
  govscope enrich ./data --output parquet --output-file enriched.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEnrich(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run enrichment", err)
		}
	},
}
