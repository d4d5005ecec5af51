package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/govscope/internal/contract"
	"golang.org/x/term"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeJSONLines writes one compact JSON object per line.
func writeJSONLines[T any](w io.Writer, items []T) error {
	encoder := json.NewEncoder(w)
	for i := range items {
		if err := encoder.Encode(items[i]); err != nil {
			return fmt.Errorf("failed to encode JSON line %d: %w", i+1, err)
		}
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// formatPercent renders a share in [0,1] as a percentage.
func formatPercent(share float64) string {
	return humanize.FtoaWithDigits(share*100, 1) + "%"
}

// topNHeaders names the top-N share columns in configured order.
func topNHeaders(topN []int, prefix string) []string {
	headers := make([]string, len(topN))
	for i, n := range topN {
		headers[i] = prefix + strconv.Itoa(n)
	}
	return headers
}

// sortedTopN returns the configured top-N values in ascending order.
func sortedTopN(topN []int) []int {
	out := slices.Clone(topN)
	slices.Sort(out)
	return slices.Compact(out)
}

// joinList renders a list value for one CSV cell.
func joinList(values []string) string {
	return strings.Join(values, "|")
}

// getMaxTableNameWidth calculates the maximum width for participant names in
// table output based on terminal width and the number of fixed columns.
func getMaxTableNameWidth(cfg *contract.Config, fixedColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each numeric column takes about ten cells with padding and borders
	available := termWidth - fixedColumns*10 - 10
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
