package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() schema.ConcentrationReport {
	return schema.ConcentrationReport{
		Activities: []schema.ActivityConcentration{
			{
				Activity: schema.MergesActivity,
				Result: schema.ConcentrationResult{
					Gini:          0.85,
					HHI:           0.6,
					TopNShares:    map[int]float64{1: 0.75, 3: 1},
					UniqueActors:  3,
					TotalActivity: 40,
				},
				MaintainerShare: 0.9,
			},
			{Activity: schema.NacksActivity, Error: "nacks: recovered from panic: boom"},
		},
		Stats: schema.EnrichStats{Read: 41, Enriched: 40, Dropped: 1},
	}
}

func sampleNetwork() []schema.NetworkResult {
	return []schema.NetworkResult{
		{
			Relation: schema.ReviewRelation,
			Stats:    schema.NetworkStats{Nodes: 2, Edges: 1, TotalWeight: 3, Density: 0.5},
			Nodes: []schema.NodeMetrics{
				{Participant: "mallory", Role: schema.MaintainerRole, OutStrength: 3, PageRank: 0.3},
				{Participant: "alice", Role: schema.DeveloperRole, InStrength: 3, PageRank: 0.7},
			},
			FailedMetrics: []string{"eigenvector"},
		},
		{Relation: schema.MergeRelation, Nodes: []schema.NodeMetrics{}, Error: "merge: graph has no nodes"},
	}
}

func sampleTimeseries() schema.TimeseriesResult {
	return schema.TimeseriesResult{
		Trends: []schema.ActivityTrend{
			{Activity: schema.MergesActivity, Points: []schema.YearPoint{
				{Year: 2020, Count: 2, Concentration: schema.ConcentrationResult{Gini: 0.5, UniqueActors: 2}},
				{Year: 2021, Count: 1, Concentration: schema.ConcentrationResult{Gini: 0, UniqueActors: 1}},
			}},
			{Activity: schema.NacksActivity, Points: []schema.YearPoint{}, Error: "bad"},
		},
		RecordCounts:         map[int]int{2019: 4, 2020: 2, 2021: 1},
		MergeCounts:          map[int]int{2020: 2, 2021: 1},
		MedianDaysToDecision: map[int]float64{2020: 3},
	}
}

func readCSV(t *testing.T, content string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteConcentrationTable(t *testing.T) {
	cfg := &contract.Config{Precision: 2, TopN: []int{3, 1}, Workers: 4, AnalysisBackend: schema.SQLiteBackend}
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeConcentrationTable(&buf, sampleReport(), cfg, fmtFloat, 50*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "merges")
	assert.Contains(t, out, "0.85")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "nacks failed: nacks: recovered from panic: boom")
	assert.Contains(t, out, "over 40 enriched records")
	assert.Contains(t, out, "Analysis backend: sqlite")
	// Top1 comes before Top3 regardless of flag order; the header renders as "TOP 1"
	top1, top3 := strings.Index(out, "TOP 1"), strings.Index(out, "TOP 3")
	require.NotEqual(t, -1, top1)
	require.NotEqual(t, -1, top3)
	assert.Less(t, top1, top3)
}

func TestWriteCSVResultsForConcentration(t *testing.T) {
	fmtFloat, _ := createFormatters(3)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForConcentration(&buf, sampleReport(), []int{1, 3}, fmtFloat))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"activity", "gini", "label", "hhi", "hhi_band", "top_1", "top_3", "unique_actors", "total_activity", "maintainer_share", "error"}, rows[0])
	assert.Equal(t, []string{"merges", "0.850", "Critical", "0.600", "Critical", "0.750", "1.000", "3", "40", "0.900", ""}, rows[1])
	assert.Equal(t, "nacks", rows[2][0])
	assert.NotEmpty(t, rows[2][10])
}

func TestConcentrationRows(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := concentrationRows(sampleReport(), at)
	require.Len(t, rows, 1)
	assert.Equal(t, "merges", rows[0].Activity)
	assert.Equal(t, at, rows[0].AnalysisTime)
	assert.InDelta(t, 0.75, rows[0].Top1Share, 1e-9)
	assert.Zero(t, rows[0].Top5Share)
	assert.Equal(t, int32(40), rows[0].TotalActivity)
}

func TestWriteNetworkTables(t *testing.T) {
	cfg := &contract.Config{Precision: 3, Width: 120, ResultLimit: 1}
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeNetworkTables(&buf, sampleNetwork(), cfg, fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Relation review: 2 nodes, 1 edges")
	assert.Contains(t, out, "mallory")
	assert.NotContains(t, out, "alice", "result limit keeps only the first node")
	assert.Contains(t, out, "metrics defaulted to zero: eigenvector")
	assert.Contains(t, out, "failed: merge: graph has no nodes")
}

func TestWriteCSVResultsForNetwork(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForNetwork(&buf, sampleNetwork(), fmtFloat))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, "relation", rows[0][0])
	assert.Equal(t, []string{"review", "1", "mallory", "maintainer"}, rows[1][:4])
	assert.Equal(t, "eigenvector", rows[1][13])
	assert.Equal(t, "alice", rows[2][2])
}

func TestParticipantRows(t *testing.T) {
	rows := participantRows(sampleNetwork(), time.Now())
	require.Len(t, rows, 2)
	assert.Equal(t, "review", rows[0].Relation)
	assert.Equal(t, int32(3), rows[0].OutStrength)
}

func TestWriteTimeseriesTable(t *testing.T) {
	cfg := &contract.Config{Precision: 1}
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeTimeseriesTable(&buf, sampleTimeseries(), cfg, fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "2019")
	assert.Contains(t, out, "2021")
	assert.Contains(t, out, "3.0")
	assert.Contains(t, out, "nacks trend failed: bad")
	assert.Less(t, strings.Index(out, "2019"), strings.Index(out, "2020"))
}

func TestWriteCSVResultsForTimeseries(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForTimeseries(&buf, sampleTimeseries(), fmtFloat))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"merges", "2020", "2", "0.50", "0.00", "2", "2", "2", "3.00"}, rows[1])
	assert.Equal(t, "", rows[2][8])
}

func TestTimeseriesYears(t *testing.T) {
	assert.Equal(t, []int{2019, 2020, 2021}, timeseriesYears(sampleTimeseries()))
	assert.Empty(t, timeseriesYears(schema.TimeseriesResult{}))
}

func sampleEnriched() []schema.EnrichedRecord {
	merged := time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return []schema.EnrichedRecord{
		{
			Record: schema.Record{
				Kind: schema.PullKind, Number: 1, Author: "alice", State: "merged",
				CreatedAt: &created, MergedAt: &merged, MergedBy: "mallory",
			},
			CanonicalAuthor:       "alice",
			CanonicalMergedBy:     "mallory",
			MaintainerInvolvement: schema.MaintainerInvolvement{AnyMaintainer: true},
			Outcome:               schema.MergedOutcome,
			TimeToDecision:        &schema.Duration{Days: 2},
			LinkedIssues:          []int{5, 7},
		},
		{
			Record:          schema.Record{Kind: schema.EmailKind, ID: "<m@x>", Author: "bob"},
			CanonicalAuthor: "bob",
		},
	}
}

func TestWriteEnrichedTable(t *testing.T) {
	cfg := &contract.Config{Workers: 2}
	stats := schema.EnrichStats{Read: 1200, Enriched: 1199, MalformedLines: 3}

	var buf bytes.Buffer
	require.NoError(t, writeEnrichedTable(&buf, sampleEnriched(), stats, cfg, time.Second))

	out := buf.String()
	assert.Contains(t, out, "pull")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "Read 1,200, enriched 1,199, dropped 0, malformed lines 3")
}

func TestWriteCSVResultsForEnriched(t *testing.T) {
	fmtFloat, _ := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForEnriched(&buf, sampleEnriched(), fmtFloat))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, "mallory", rows[1][col("canonical_merged_by")])
	assert.Equal(t, "true", rows[1][col("any_maintainer_involved")])
	assert.Equal(t, "2.0", rows[1][col("days_to_decision")])
	assert.Equal(t, "5,7", rows[1][col("linked_issues")])
	assert.Equal(t, "", rows[2][col("days_to_decision")])
	assert.Equal(t, "", rows[2][col("created_at")])
}

func TestWriteResultDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	env := schema.NewEnvelope("concentration", "", []string{"pulls.jsonl"}, time.Now(), sampleReport())

	path, err := WriteResultDocument(dir, env)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "concentration.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "data")
	assert.NotContains(t, decoded, "error")

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = WriteResultDocument(dir, schema.Envelope{})
	assert.Error(t, err)
}

func TestWriteEnrichedStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enriched_records.jsonl")
	require.NoError(t, WriteEnrichedStream(path, sampleEnriched()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "alice", first["canonical_author"])
}

func TestPrintReportSummary(t *testing.T) {
	docs := []schema.ReportDocument{
		{Name: "concentration", Path: "results/concentration.json"},
		{Name: "network_review", Path: "results/network_review.json", Error: "boom"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReportTable(&buf, docs, time.Second))
		assert.Contains(t, buf.String(), "network_review")
		assert.Contains(t, buf.String(), "2 documents (1 with errors)")
	})

	t.Run("json file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "summary.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out}
		require.NoError(t, PrintReportSummary(docs, cfg, time.Second))

		content, err := os.ReadFile(out)
		require.NoError(t, err)
		var decoded []schema.ReportDocument
		require.NoError(t, json.Unmarshal(content, &decoded))
		assert.Equal(t, docs, decoded)
	})
}

func TestParquetOutputRequiresFile(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut}
	assert.Error(t, PrintConcentrationResults(sampleReport(), cfg, 0))
	assert.Error(t, PrintNetworkResults(sampleNetwork(), cfg, 0))
	assert.Error(t, PrintEnrichedResults(sampleEnriched(), schema.EnrichStats{}, cfg, 0))
}

func TestParquetOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "c.parquet")}
	require.NoError(t, PrintConcentrationResults(sampleReport(), cfg, 0))
	info, err := os.Stat(cfg.OutputFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "75%", formatPercent(0.75))
	assert.Equal(t, "33.3%", formatPercent(1.0/3.0))
	assert.Equal(t, []string{"Top1", "Top5"}, topNHeaders([]int{1, 5}, "Top"))
	assert.Equal(t, []int{1, 3, 10}, sortedTopN([]int{10, 1, 3, 1}))
	assert.Equal(t, "a|b", joinList([]string{"a", "b"}))

	assert.Equal(t, 12, getMaxTableNameWidth(&contract.Config{Width: 40}, 8))
	assert.Equal(t, 40, getMaxTableNameWidth(&contract.Config{Width: 400}, 8))
	assert.Equal(t, 30, getMaxTableNameWidth(&contract.Config{Width: 120}, 8))
}
