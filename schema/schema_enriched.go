package schema

import "time"

// Classification labels produced by the record classifier.
const (
	TypeConsensus     = "consensus"
	TypeBugfix        = "bugfix"
	TypeFeature       = "feature"
	TypeDocumentation = "documentation"
	TypeRefactor      = "refactor"
	TypePerformance   = "performance"
	TypeUnknown       = "unknown"

	ConfidenceHigh    = "high"
	ConfidenceMedium  = "medium"
	ConfidenceLow     = "low"
	ConfidenceUnknown = "unknown"

	ImportanceTrivial  = "trivial"
	ImportanceLow      = "low"
	ImportanceNormal   = "normal"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"

	ReviewApproval       = "approval"
	ReviewChangesRequest = "changes_requested"
	ReviewNack           = "nack"
	ReviewComment        = "comment"

	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	StrengthStrong = "strong"
	StrengthMedium = "medium"
	StrengthWeak   = "weak"
)

// Classification is the categorical tagging of one record.
type Classification struct {
	PrimaryType string   `json:"primary_type"`
	Subtypes    []string `json:"subtypes"`
	Confidence  string   `json:"confidence"`
	IsConsensus bool     `json:"is_consensus_related"`
	Importance  string   `json:"importance"`
}

// ReviewClassification is the tagging of one review or comment body.
type ReviewClassification struct {
	Author     string     `json:"author"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	ReviewType string     `json:"review_type"`
	Sentiment  string     `json:"sentiment"`
	Strength   string     `json:"strength"`
	IsNack     bool       `json:"is_nack"`
}

// DomainExpertise maps the files of a record to code domains.
type DomainExpertise struct {
	Domains       []string       `json:"domains"`
	PrimaryDomain string         `json:"primary_domain,omitempty"`
	FileCounts    map[string]int `json:"file_counts,omitempty"`
}

// MaintainerInvolvement holds point-in-time maintainer checks for each role.
type MaintainerInvolvement struct {
	AuthorIsMaintainer   bool     `json:"author_is_maintainer"`
	MergedByMaintainer   bool     `json:"merged_by_maintainer"`
	MaintainerReviewers  []string `json:"maintainer_reviewers"`
	MaintainerCommenters []string `json:"maintainer_commenters"`
	AnyMaintainer        bool     `json:"any_maintainer_involved"`
}

// Duration is an elapsed time reported in both days and hours.
type Duration struct {
	Days  float64 `json:"days"`
	Hours float64 `json:"hours"`
}

// ComplexityMetrics describes the size of a change.
type ComplexityMetrics struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`
	TotalChanges int `json:"total_changes"`
}

// NackEvent is one NACK found in a review or comment.
type NackEvent struct {
	Author    string     `json:"author"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ReviewMetrics summarizes the review activity on a record.
type ReviewMetrics struct {
	Approvals       int                    `json:"approvals"`
	Rejections      int                    `json:"rejections"`
	NackCount       int                    `json:"nack_count"`
	UniqueReviewers int                    `json:"unique_reviewers"`
	Reviewers       []string               `json:"reviewers"`
	Nacks           []NackEvent            `json:"nacks"`
	Reviews         []ReviewClassification `json:"review_classifications"`
}

// EnrichedRecord is a cleaned record plus every derived field.
// Values are built once by the enrichment builder and never mutated after.
type EnrichedRecord struct {
	Record

	CanonicalAuthor       string                `json:"canonical_author"`
	CanonicalMergedBy     string                `json:"canonical_merged_by,omitempty"`
	CanonicalCommenters   []string              `json:"canonical_commenters,omitempty"`
	CanonicalSigners      []string              `json:"canonical_signers,omitempty"`
	MaintainerInvolvement MaintainerInvolvement `json:"maintainer_involvement"`
	Classification        Classification        `json:"classification"`
	Outcome               Outcome               `json:"decision_outcome"`
	TimeToDecision        *Duration             `json:"time_to_decision"`
	Complexity            ComplexityMetrics     `json:"complexity"`
	ReviewMetrics         ReviewMetrics         `json:"review_metrics"`
	DomainExpertise       DomainExpertise       `json:"domain_expertise"`
	LinkedIssues          []int                 `json:"linked_issues"`
}

// EnrichStats counts what happened to each record of an enrichment batch.
type EnrichStats struct {
	Read           int `json:"read"`
	Enriched       int `json:"enriched"`
	Dropped        int `json:"dropped"`
	MalformedLines int `json:"malformed_lines"`
}
