package schema

// NodeMetrics holds the centrality measures of one participant.
type NodeMetrics struct {
	Participant string  `json:"participant"`
	Role        Role    `json:"role"`
	InDegree    int     `json:"in_degree"`
	OutDegree   int     `json:"out_degree"`
	InStrength  int     `json:"in_strength"`
	OutStrength int     `json:"out_strength"`
	Degree      float64 `json:"degree_centrality"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
	Eigenvector float64 `json:"eigenvector"`
	PageRank    float64 `json:"pagerank"`
}

// Edge is a collapsed interaction edge from Source acting on Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// NetworkStats are graph-level counts and ratios.
type NetworkStats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	TotalWeight int     `json:"total_weight"`
	Density     float64 `json:"density"`
	Reciprocity float64 `json:"reciprocity"`
}

// NetworkResult is the full centrality report for one relation.
type NetworkResult struct {
	Relation                 Relation            `json:"relation"`
	Stats                    NetworkStats        `json:"stats"`
	Nodes                    []NodeMetrics       `json:"nodes"`
	TopEdges                 []Edge              `json:"top_edges"`
	FailedMetrics            []string            `json:"failed_metrics,omitempty"`
	OutStrengthConcentration ConcentrationResult `json:"out_strength_concentration"`
	InStrengthConcentration  ConcentrationResult `json:"in_strength_concentration"`
	PageRankConcentration    ConcentrationResult `json:"pagerank_concentration"`
	Error                    string              `json:"error,omitempty"`
}
