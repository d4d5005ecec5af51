package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/parquet"
	"github.com/huangsam/govscope/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintNetworkResults outputs the network results, dispatching based on the output format configured.
func PrintNetworkResults(results []schema.NetworkResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON network results"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForNetwork(w, results, fmtFloat)
		}, "Wrote CSV network results"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		if err := parquet.WriteParticipantMetricsParquet(participantRows(results, time.Now()), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNetworkTables(w, results, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// participantRows maps live node metrics onto the stored participant rows.
func participantRows(results []schema.NetworkResult, at time.Time) []parquet.ParticipantMetrics {
	var records []schema.ParticipantMetricsRecord
	for _, r := range results {
		for _, n := range r.Nodes {
			records = append(records, schema.ParticipantMetricsRecord{
				AnalysisTime: at,
				Relation:     string(r.Relation),
				Participant:  n.Participant,
				Role:         string(n.Role),
				InStrength:   int32(n.InStrength),
				OutStrength:  int32(n.OutStrength),
				Betweenness:  n.Betweenness,
				Closeness:    n.Closeness,
				Eigenvector:  n.Eigenvector,
				PageRank:     n.PageRank,
			})
		}
	}
	return parquet.ConvertParticipantMetricsRecords(records)
}

// writeNetworkTables prints one ranked participant table per relation.
func writeNetworkTables(w io.Writer, results []schema.NetworkResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	nameWidth := getMaxTableNameWidth(cfg, 8)
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "Relation %s: %s nodes, %s edges, density %s, reciprocity %s\n",
			r.Relation, humanize.Comma(int64(r.Stats.Nodes)), humanize.Comma(int64(r.Stats.Edges)),
			fmtFloat(r.Stats.Density), fmtFloat(r.Stats.Reciprocity)); err != nil {
			return err
		}
		if r.Error != "" {
			if _, err := fmt.Fprintf(w, "  failed: %s\n", r.Error); err != nil {
				return err
			}
			continue
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Participant", "Role", "In", "Out", "Betweenness", "Closeness", "Eigenvector", "PageRank"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		nodes := r.Nodes
		if cfg.ResultLimit > 0 && len(nodes) > cfg.ResultLimit {
			nodes = nodes[:cfg.ResultLimit]
		}
		var data [][]string
		for i, n := range nodes {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				contract.TruncateName(n.Participant, nameWidth),
				string(n.Role),
				humanize.Comma(int64(n.InStrength)),
				humanize.Comma(int64(n.OutStrength)),
				fmtFloat(n.Betweenness),
				fmtFloat(n.Closeness),
				fmtFloat(n.Eigenvector),
				fmtFloat(n.PageRank),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		if len(r.FailedMetrics) > 0 {
			if _, err := fmt.Fprintf(w, "  metrics defaulted to zero: %s\n", joinList(r.FailedMetrics)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  PageRank Gini %s, out-strength Gini %s\n",
			fmtFloat(r.PageRankConcentration.Gini), fmtFloat(r.OutStrengthConcentration.Gini)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Analysis backend: %s\n", duration, cfg.Workers, cfg.AnalysisBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForNetwork writes one row per participant per relation.
func writeCSVResultsForNetwork(w io.Writer, results []schema.NetworkResult, fmtFloat func(float64) string) error {
	header := []string{
		"relation",
		"rank",
		"participant",
		"role",
		"in_degree",
		"out_degree",
		"in_strength",
		"out_strength",
		"degree_centrality",
		"betweenness",
		"closeness",
		"eigenvector",
		"pagerank",
		"failed_metrics",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			failed := joinList(r.FailedMetrics)
			for i, n := range r.Nodes {
				rec := []string{
					string(r.Relation),
					strconv.Itoa(i + 1),
					n.Participant,
					string(n.Role),
					strconv.Itoa(n.InDegree),
					strconv.Itoa(n.OutDegree),
					strconv.Itoa(n.InStrength),
					strconv.Itoa(n.OutStrength),
					fmtFloat(n.Degree),
					fmtFloat(n.Betweenness),
					fmtFloat(n.Closeness),
					fmtFloat(n.Eigenvector),
					fmtFloat(n.PageRank),
					failed,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
