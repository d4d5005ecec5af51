// Package parquet provides data structures and functions for exporting govscope
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/govscope/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single govscope analysis run with metadata.
// This struct maps to the govscope_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RunUUID is the run id stamped into result documents
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRecords is the number of cleaned records read in this run
	TotalRecords int32 `parquet:"total_records,snappy"`

	// DroppedRecords is the number of records dropped for a missing id and author
	DroppedRecords int32 `parquet:"dropped_records,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Concentration is one stored concentration result.
// Year 0 marks the all-years result.
type Concentration struct {
	AnalysisID    int64     `parquet:"analysis_id,snappy"`
	AnalysisTime  time.Time `parquet:"analysis_time,snappy"`
	Scope         string    `parquet:"scope,snappy,dict"`
	Activity      string    `parquet:"activity,snappy,dict"`
	Year          int32     `parquet:"year,snappy"`
	Gini          float64   `parquet:"gini,snappy"`
	HHI           float64   `parquet:"hhi,snappy"`
	Top1Share     float64   `parquet:"top_1_share,snappy"`
	Top5Share     float64   `parquet:"top_5_share,snappy"`
	Top10Share    float64   `parquet:"top_10_share,snappy"`
	UniqueActors  int32     `parquet:"unique_actors,snappy"`
	TotalActivity int32     `parquet:"total_activity,snappy"`
}

// ParticipantMetrics is the centrality of one participant in one relation network.
type ParticipantMetrics struct {
	AnalysisID   int64     `parquet:"analysis_id,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Relation     string    `parquet:"relation,snappy,dict"`
	Participant  string    `parquet:"participant,snappy"`
	Role         string    `parquet:"role,snappy,dict"`
	InStrength   int32     `parquet:"in_strength,snappy"`
	OutStrength  int32     `parquet:"out_strength,snappy"`
	Betweenness  float64   `parquet:"betweenness,snappy"`
	Closeness    float64   `parquet:"closeness,snappy"`
	Eigenvector  float64   `parquet:"eigenvector,snappy"`
	PageRank     float64   `parquet:"pagerank,snappy"`
}

// EnrichedRecord is the flat columnar form of one enriched record.
// List-valued fields are joined with commas.
type EnrichedRecord struct {
	Kind              string     `parquet:"kind,snappy,dict"`
	Key               string     `parquet:"key,snappy"`
	Number            int32      `parquet:"number,snappy"`
	Author            string     `parquet:"author,snappy"`
	CanonicalAuthor   string     `parquet:"canonical_author,snappy"`
	CanonicalMergedBy *string    `parquet:"canonical_merged_by,optional,snappy"`
	CreatedAt         *time.Time `parquet:"created_at,optional,snappy"`
	MergedAt          *time.Time `parquet:"merged_at,optional,snappy"`
	PrimaryType       string     `parquet:"primary_type,snappy,dict"`
	Subtypes          string     `parquet:"subtypes,snappy"`
	Importance        string     `parquet:"importance,snappy,dict"`
	IsConsensus       bool       `parquet:"is_consensus_related,snappy"`
	AnyMaintainer     bool       `parquet:"any_maintainer_involved,snappy"`
	Outcome           string     `parquet:"decision_outcome,snappy,dict"`
	DaysToDecision    *float64   `parquet:"days_to_decision,optional,snappy"`
	TotalChanges      int32      `parquet:"total_changes,snappy"`
	Approvals         int32      `parquet:"approvals,snappy"`
	Rejections        int32      `parquet:"rejections,snappy"`
	NackCount         int32      `parquet:"nack_count,snappy"`
	UniqueReviewers   int32      `parquet:"unique_reviewers,snappy"`
	PrimaryDomain     string     `parquet:"primary_domain,snappy,dict"`
	LinkedIssues      string     `parquet:"linked_issues,snappy"`
}

// writeParquet writes rows to a Parquet file, inferring the schema from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteConcentrationParquet writes a slice of Concentration structs to a Parquet file.
func WriteConcentrationParquet(data []Concentration, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteParticipantMetricsParquet writes a slice of ParticipantMetrics structs to a Parquet file.
func WriteParticipantMetricsParquet(data []ParticipantMetrics, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteEnrichedRecordsParquet writes a slice of EnrichedRecord structs to a Parquet file.
func WriteEnrichedRecordsParquet(data []EnrichedRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:     record.AnalysisID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalRecords:   record.TotalRecords,
			DroppedRecords: record.DroppedRecords,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertConcentrationRecords converts schema.ConcentrationRecord to Concentration for Parquet export.
func ConvertConcentrationRecords(records []schema.ConcentrationRecord) []Concentration {
	result := make([]Concentration, len(records))
	for i, record := range records {
		result[i] = Concentration{
			AnalysisID:    record.AnalysisID,
			AnalysisTime:  record.AnalysisTime,
			Scope:         record.Scope,
			Activity:      record.Activity,
			Year:          record.Year,
			Gini:          record.Gini,
			HHI:           record.HHI,
			Top1Share:     record.Top1Share,
			Top5Share:     record.Top5Share,
			Top10Share:    record.Top10Share,
			UniqueActors:  record.UniqueActors,
			TotalActivity: record.TotalActivity,
		}
	}
	return result
}

// ConvertParticipantMetricsRecords converts schema.ParticipantMetricsRecord to ParticipantMetrics for Parquet export.
func ConvertParticipantMetricsRecords(records []schema.ParticipantMetricsRecord) []ParticipantMetrics {
	result := make([]ParticipantMetrics, len(records))
	for i, record := range records {
		result[i] = ParticipantMetrics{
			AnalysisID:   record.AnalysisID,
			AnalysisTime: record.AnalysisTime,
			Relation:     record.Relation,
			Participant:  record.Participant,
			Role:         record.Role,
			InStrength:   record.InStrength,
			OutStrength:  record.OutStrength,
			Betweenness:  record.Betweenness,
			Closeness:    record.Closeness,
			Eigenvector:  record.Eigenvector,
			PageRank:     record.PageRank,
		}
	}
	return result
}

// ConvertEnrichedRecords flattens enriched records into columnar rows.
func ConvertEnrichedRecords(records []schema.EnrichedRecord) []EnrichedRecord {
	result := make([]EnrichedRecord, len(records))
	for i, r := range records {
		row := EnrichedRecord{
			Kind:            string(r.Kind),
			Key:             r.Key(),
			Number:          int32(r.Number),
			Author:          r.Author,
			CanonicalAuthor: r.CanonicalAuthor,
			CreatedAt:       r.CreatedAt,
			MergedAt:        r.MergedAt,
			PrimaryType:     r.Classification.PrimaryType,
			Subtypes:        strings.Join(r.Classification.Subtypes, ","),
			Importance:      r.Classification.Importance,
			IsConsensus:     r.Classification.IsConsensus,
			AnyMaintainer:   r.MaintainerInvolvement.AnyMaintainer,
			Outcome:         string(r.Outcome),
			TotalChanges:    int32(r.Complexity.TotalChanges),
			Approvals:       int32(r.ReviewMetrics.Approvals),
			Rejections:      int32(r.ReviewMetrics.Rejections),
			NackCount:       int32(r.ReviewMetrics.NackCount),
			UniqueReviewers: int32(r.ReviewMetrics.UniqueReviewers),
			PrimaryDomain:   r.DomainExpertise.PrimaryDomain,
			LinkedIssues:    joinInts(r.LinkedIssues),
		}
		if r.CanonicalMergedBy != "" {
			merger := r.CanonicalMergedBy
			row.CanonicalMergedBy = &merger
		}
		if r.TimeToDecision != nil {
			days := r.TimeToDecision.Days
			row.DaysToDecision = &days
		}
		result[i] = row
	}
	return result
}

// joinInts renders issue numbers as a comma list.
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
