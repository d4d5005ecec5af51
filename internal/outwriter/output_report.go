package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintReportSummary outputs the list of written documents, dispatching based on the output format configured.
func PrintReportSummary(docs []schema.ReportDocument, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, docs)
		}, "Wrote JSON report summary")
	case schema.CSVOut, schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "path", "error"}, func(cw *csv.Writer) error {
				for _, d := range docs {
					if err := cw.Write([]string{d.Name, d.Path, d.Error}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV report summary")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, docs, duration)
		}, "Wrote table")
	}
}

// writeReportTable prints one row per document with its status.
func writeReportTable(w io.Writer, docs []schema.ReportDocument, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Document", "Status", "Path"})

	failed := 0
	var data [][]string
	for _, d := range docs {
		status := "ok"
		if d.Error != "" {
			status = contract.CriticalColor.Sprint("error: " + d.Error)
			failed++
		}
		data = append(data, []string{d.Name, status, d.Path})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Report wrote %d documents (%d with errors) in %v\n", len(docs), failed, duration); err != nil {
		return err
	}
	return nil
}
