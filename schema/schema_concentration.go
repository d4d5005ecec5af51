package schema

// ParticipantShare is one participant's slice of an activity total.
type ParticipantShare struct {
	Participant string  `json:"participant"`
	Value       float64 `json:"value"`
	Share       float64 `json:"share"`
}

// ConcentrationResult is the inequality summary of one activity multiset.
// TotalWeight is only set when the input was a real-valued distribution.
type ConcentrationResult struct {
	Gini          float64            `json:"gini" validate:"gte=0,lte=1"`
	HHI           float64            `json:"hhi" validate:"gte=0,lte=1"`
	TopNShares    map[int]float64    `json:"top_n_shares"`
	UniqueActors  int                `json:"unique_actors" validate:"gte=0"`
	TotalActivity int                `json:"total_activity" validate:"gte=0"`
	TotalWeight   float64            `json:"total_weight,omitempty"`
	Shares        []ParticipantShare `json:"shares,omitempty"`
}

// TopShare returns the top-N share or zero when N was not computed.
func (c ConcentrationResult) TopShare(n int) float64 {
	return c.TopNShares[n]
}

// ActivityConcentration is the concentration of one activity across all records.
type ActivityConcentration struct {
	Activity        Activity            `json:"activity"`
	Result          ConcentrationResult `json:"result"`
	MaintainerShare float64             `json:"maintainer_share"`
	Error           string              `json:"error,omitempty"`
}

// ConcentrationReport bundles every activity computed in one run.
type ConcentrationReport struct {
	Activities []ActivityConcentration `json:"activities"`
	Stats      EnrichStats             `json:"enrichment_stats"`
}
