// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteEnriched prints the enriched records using the configured output format.
func (ow *OutWriter) WriteEnriched(records []schema.EnrichedRecord, stats schema.EnrichStats, cfg *contract.Config, duration time.Duration) error {
	return PrintEnrichedResults(records, stats, cfg, duration)
}

// WriteConcentration prints activity concentration results using the configured output format.
func (ow *OutWriter) WriteConcentration(report schema.ConcentrationReport, cfg *contract.Config, duration time.Duration) error {
	return PrintConcentrationResults(report, cfg, duration)
}

// WriteNetwork prints network centrality results using the configured output format.
func (ow *OutWriter) WriteNetwork(results []schema.NetworkResult, cfg *contract.Config, duration time.Duration) error {
	return PrintNetworkResults(results, cfg, duration)
}

// WriteTimeseries prints the yearly trends using the configured output format.
func (ow *OutWriter) WriteTimeseries(result schema.TimeseriesResult, cfg *contract.Config, duration time.Duration) error {
	return PrintTimeseriesResults(result, cfg, duration)
}

// WriteReport prints the list of result documents written by a report run.
func (ow *OutWriter) WriteReport(docs []schema.ReportDocument, cfg *contract.Config, duration time.Duration) error {
	return PrintReportSummary(docs, cfg, duration)
}
