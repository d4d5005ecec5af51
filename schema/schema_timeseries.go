package schema

// YearPoint is one yearly bucket of an activity trend.
type YearPoint struct {
	Year          int                 `json:"year"`
	Count         int                 `json:"count"`
	Concentration ConcentrationResult `json:"concentration"`
}

// ActivityTrend is the per-year concentration series of one activity.
type ActivityTrend struct {
	Activity Activity    `json:"activity"`
	Points   []YearPoint `json:"points"`
	Error    string      `json:"error,omitempty"`
}

// TimeseriesResult holds every yearly view of one run.
type TimeseriesResult struct {
	Trends               []ActivityTrend `json:"trends"`
	RecordCounts         map[int]int     `json:"record_counts"`
	MergeCounts          map[int]int     `json:"merge_counts"`
	MedianDaysToDecision map[int]float64 `json:"median_days_to_decision"`
}
