package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTimeseriesResults outputs the timeseries results, dispatching based on the output format configured.
func PrintTimeseriesResults(result schema.TimeseriesResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON timeseries results"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut, schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTimeseries(w, result, fmtFloat)
		}, "Wrote CSV timeseries results"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTimeseriesTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// timeseriesYears returns every year seen in any view, ascending.
func timeseriesYears(result schema.TimeseriesResult) []int {
	seen := map[int]struct{}{}
	for y := range result.RecordCounts {
		seen[y] = struct{}{}
	}
	for _, t := range result.Trends {
		for _, p := range t.Points {
			seen[p.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// writeTimeseriesTable prints one row per year with the Gini of every activity.
func writeTimeseriesTable(w io.Writer, result schema.TimeseriesResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Year", "Records", "Merges", "Median Days"}
	for _, t := range result.Trends {
		headers = append(headers, string(t.Activity)+" Gini")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// Index each trend by year for row lookups
	byYear := make([]map[int]schema.YearPoint, len(result.Trends))
	for i, t := range result.Trends {
		byYear[i] = make(map[int]schema.YearPoint, len(t.Points))
		for _, p := range t.Points {
			byYear[i][p.Year] = p
		}
	}

	var data [][]string
	for _, year := range timeseriesYears(result) {
		median := "-"
		if m, ok := result.MedianDaysToDecision[year]; ok {
			median = fmtFloat(m)
		}
		row := []string{
			strconv.Itoa(year),
			humanize.Comma(int64(result.RecordCounts[year])),
			humanize.Comma(int64(result.MergeCounts[year])),
			median,
		}
		for i := range result.Trends {
			if p, ok := byYear[i][year]; ok {
				row = append(row, fmtFloat(p.Concentration.Gini))
			} else {
				row = append(row, "-")
			}
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, t := range result.Trends {
		if t.Error != "" {
			if _, err := fmt.Fprintf(w, "%s trend failed: %s\n", t.Activity, t.Error); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "Timeseries analysis completed in %v with %d workers. Analysis backend: %s\n", duration, cfg.Workers, cfg.AnalysisBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForTimeseries writes one row per activity and year.
func writeCSVResultsForTimeseries(w io.Writer, result schema.TimeseriesResult, fmtFloat func(float64) string) error {
	header := []string{
		"activity",
		"year",
		"count",
		"gini",
		"hhi",
		"unique_actors",
		"records",
		"merges",
		"median_days_to_decision",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range result.Trends {
			for _, p := range t.Points {
				median := ""
				if m, ok := result.MedianDaysToDecision[p.Year]; ok {
					median = fmtFloat(m)
				}
				rec := []string{
					string(t.Activity),
					strconv.Itoa(p.Year),
					strconv.Itoa(p.Count),
					fmtFloat(p.Concentration.Gini),
					fmtFloat(p.Concentration.HHI),
					strconv.Itoa(p.Concentration.UniqueActors),
					strconv.Itoa(result.RecordCounts[p.Year]),
					strconv.Itoa(result.MergeCounts[p.Year]),
					median,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
