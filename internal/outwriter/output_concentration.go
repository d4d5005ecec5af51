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

// PrintConcentrationResults outputs the concentration report, dispatching based on the output format configured.
func PrintConcentrationResults(report schema.ConcentrationReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON concentration results"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForConcentration(w, report, cfg.TopN, fmtFloat)
		}, "Wrote CSV concentration results"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		if err := parquet.WriteConcentrationParquet(concentrationRows(report, time.Now()), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeConcentrationTable(w, report, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// concentrationRows maps a live report onto the stored concentration rows.
func concentrationRows(report schema.ConcentrationReport, at time.Time) []parquet.Concentration {
	records := make([]schema.ConcentrationRecord, 0, len(report.Activities))
	for _, a := range report.Activities {
		if a.Error != "" {
			continue
		}
		records = append(records, schema.ConcentrationRecord{
			AnalysisTime:  at,
			Scope:         "all",
			Activity:      string(a.Activity),
			Gini:          a.Result.Gini,
			HHI:           a.Result.HHI,
			Top1Share:     a.Result.TopShare(1),
			Top5Share:     a.Result.TopShare(5),
			Top10Share:    a.Result.TopShare(10),
			UniqueActors:  int32(a.Result.UniqueActors),
			TotalActivity: int32(a.Result.TotalActivity),
		})
	}
	return parquet.ConvertConcentrationRecords(records)
}

// writeConcentrationTable prints one row per activity with labelled Gini and HHI.
func writeConcentrationTable(w io.Writer, report schema.ConcentrationReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	topN := sortedTopN(cfg.TopN)
	headers := []string{"Activity", "Gini", "Label", "HHI", "Band"}
	headers = append(headers, topNHeaders(topN, "Top")...)
	headers = append(headers, "Actors", "Total", "Maintainer")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var failed []schema.ActivityConcentration
	for _, a := range report.Activities {
		if a.Error != "" {
			failed = append(failed, a)
			continue
		}
		row := []string{
			string(a.Activity),
			fmtFloat(a.Result.Gini),
			contract.GetColorLabel(contract.GetPlainLabel(a.Result.Gini)),
			fmtFloat(a.Result.HHI),
			contract.GetColorLabel(contract.GetHHILabel(a.Result.HHI)),
		}
		for _, n := range topN {
			row = append(row, formatPercent(a.Result.TopShare(n)))
		}
		row = append(row,
			humanize.Comma(int64(a.Result.UniqueActors)),
			humanize.Comma(int64(a.Result.TotalActivity)),
			formatPercent(a.MaintainerShare),
		)
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, a := range failed {
		if _, err := fmt.Fprintf(w, "%s failed: %s\n", a.Activity, a.Error); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Concentration of %d activities over %s enriched records\n",
		len(report.Activities), humanize.Comma(int64(report.Stats.Enriched))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Analysis backend: %s\n", duration, cfg.Workers, cfg.AnalysisBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForConcentration writes one row per activity.
func writeCSVResultsForConcentration(w io.Writer, report schema.ConcentrationReport, topN []int, fmtFloat func(float64) string) error {
	topN = sortedTopN(topN)
	header := []string{"activity", "gini", "label", "hhi", "hhi_band"}
	header = append(header, topNHeaders(topN, "top_")...)
	header = append(header, "unique_actors", "total_activity", "maintainer_share", "error")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, a := range report.Activities {
			rec := []string{
				string(a.Activity),
				fmtFloat(a.Result.Gini),
				contract.GetPlainLabel(a.Result.Gini),
				fmtFloat(a.Result.HHI),
				contract.GetHHILabel(a.Result.HHI),
			}
			for _, n := range topN {
				rec = append(rec, fmtFloat(a.Result.TopShare(n)))
			}
			rec = append(rec,
				strconv.Itoa(a.Result.UniqueActors),
				strconv.Itoa(a.Result.TotalActivity),
				fmtFloat(a.MaintainerShare),
				a.Error,
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
