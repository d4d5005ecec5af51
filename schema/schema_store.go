package schema

import "time"

// AnalysisRunRecord represents a row from the govscope_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalRecords   int32
	DroppedRecords int32
	ConfigParams   *string
}
