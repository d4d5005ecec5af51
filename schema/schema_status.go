package schema

import "time"

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalRecordsSeen int              `json:"total_records_seen"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// ConcentrationRecord represents a row from the govscope_concentration table.
type ConcentrationRecord struct {
	AnalysisID    int64
	AnalysisTime  time.Time
	Scope         string
	Activity      string
	Year          int32
	Gini          float64
	HHI           float64
	Top1Share     float64
	Top5Share     float64
	Top10Share    float64
	UniqueActors  int32
	TotalActivity int32
}

// ParticipantMetricsRecord represents a row from the govscope_participant_metrics table.
type ParticipantMetricsRecord struct {
	AnalysisID   int64
	AnalysisTime time.Time
	Relation     string
	Participant  string
	Role         string
	InStrength   int32
	OutStrength  int32
	Betweenness  float64
	Closeness    float64
	Eigenvector  float64
	PageRank     float64
}
