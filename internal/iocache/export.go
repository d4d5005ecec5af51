package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/parquet"
)

// ExecuteAnalysisExport exports every stored run, concentration row and
// participant metrics row to Parquet files prefixed with outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %s\n", humanize.Comma(int64(status.TotalRuns)))

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	concentrations, err := store.GetAllConcentrations()
	if err != nil {
		return fmt.Errorf("failed to retrieve concentration rows: %w", err)
	}
	participants, err := store.GetAllParticipantMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve participant metrics: %w", err)
	}

	exports := []struct {
		label string
		path  string
		count int
		write func(path string) error
	}{
		{"analysis runs", outputFile + ".analysis_runs.parquet", len(runs), func(path string) error {
			return parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), path)
		}},
		{"concentration rows", outputFile + ".concentration.parquet", len(concentrations), func(path string) error {
			return parquet.WriteConcentrationParquet(parquet.ConvertConcentrationRecords(concentrations), path)
		}},
		{"participant metrics rows", outputFile + ".participant_metrics.parquet", len(participants), func(path string) error {
			return parquet.WriteParticipantMetricsParquet(parquet.ConvertParticipantMetricsRecords(participants), path)
		}},
	}

	for _, e := range exports {
		if err := e.write(e.path); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.label, err)
		}
		_, _ = fmt.Fprintf(w, "Exported %s %s to: %s\n", humanize.Comma(int64(e.count)), e.label, e.path)
	}

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Arrow")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")

	return nil
}
