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

// PrintEnrichedResults outputs the enriched records, dispatching based on the output format configured.
func PrintEnrichedResults(records []schema.EnrichedRecord, stats schema.EnrichStats, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONLines(w, records)
		}, "Wrote enriched JSON lines"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForEnriched(w, records, fmtFloat)
		}, "Wrote enriched CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		if err := parquet.WriteEnrichedRecordsParquet(parquet.ConvertEnrichedRecords(records), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEnrichedTable(w, records, stats, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// kindSummary counts the derived flags of one record kind.
type kindSummary struct {
	records     int
	merged      int
	maintainer  int
	consensus   int
	withOutcome int
}

// summarizeKinds groups the enriched records by kind.
func summarizeKinds(records []schema.EnrichedRecord) map[schema.RecordKind]*kindSummary {
	summaries := map[schema.RecordKind]*kindSummary{}
	for i := range records {
		r := &records[i]
		s, ok := summaries[r.Kind]
		if !ok {
			s = &kindSummary{}
			summaries[r.Kind] = s
		}
		s.records++
		if r.IsMerged() {
			s.merged++
		}
		if r.MaintainerInvolvement.AnyMaintainer {
			s.maintainer++
		}
		if r.Classification.IsConsensus {
			s.consensus++
		}
		if r.Outcome != "" {
			s.withOutcome++
		}
	}
	return summaries
}

// writeEnrichedTable prints the enrichment counters and a per-kind summary.
func writeEnrichedTable(w io.Writer, records []schema.EnrichedRecord, stats schema.EnrichStats, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Kind", "Records", "Merged", "Maintainer", "Consensus", "Decided"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	summaries := summarizeKinds(records)
	var data [][]string
	for _, kind := range schema.AllRecordKinds {
		s, ok := summaries[kind]
		if !ok {
			continue
		}
		data = append(data, []string{
			string(kind),
			humanize.Comma(int64(s.records)),
			humanize.Comma(int64(s.merged)),
			humanize.Comma(int64(s.maintainer)),
			humanize.Comma(int64(s.consensus)),
			humanize.Comma(int64(s.withOutcome)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Read %s, enriched %s, dropped %s, malformed lines %s\n",
		humanize.Comma(int64(stats.Read)), humanize.Comma(int64(stats.Enriched)),
		humanize.Comma(int64(stats.Dropped)), humanize.Comma(int64(stats.MalformedLines))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Enrichment completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForEnriched writes one flat row per enriched record.
func writeCSVResultsForEnriched(w io.Writer, records []schema.EnrichedRecord, fmtFloat func(float64) string) error {
	header := []string{
		"kind",
		"key",
		"number",
		"author",
		"canonical_author",
		"canonical_merged_by",
		"created_at",
		"primary_type",
		"subtypes",
		"importance",
		"is_consensus_related",
		"any_maintainer_involved",
		"decision_outcome",
		"days_to_decision",
		"total_changes",
		"approvals",
		"rejections",
		"nack_count",
		"unique_reviewers",
		"primary_domain",
		"linked_issues",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.ConvertEnrichedRecords(records) {
			rec := []string{
				row.Kind,
				row.Key,
				strconv.Itoa(int(row.Number)),
				row.Author,
				row.CanonicalAuthor,
				derefString(row.CanonicalMergedBy),
				formatTimePtr(row.CreatedAt),
				row.PrimaryType,
				row.Subtypes,
				row.Importance,
				strconv.FormatBool(row.IsConsensus),
				strconv.FormatBool(row.AnyMaintainer),
				row.Outcome,
				formatFloatPtr(row.DaysToDecision, fmtFloat),
				strconv.Itoa(int(row.TotalChanges)),
				strconv.Itoa(int(row.Approvals)),
				strconv.Itoa(int(row.Rejections)),
				strconv.Itoa(int(row.NackCount)),
				strconv.Itoa(int(row.UniqueReviewers)),
				row.PrimaryDomain,
				row.LinkedIssues,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}

func formatFloatPtr(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}
