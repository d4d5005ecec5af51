// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/govscope/schema"
)

// IdentityResolver maps platform-local handles to canonical participant ids.
// Resolution never fails; unknown handles resolve to themselves.
type IdentityResolver interface {
	Resolve(platformID string) string
}

// MaintainerTimeline answers point-in-time maintainer questions.
type MaintainerTimeline interface {
	// IsMaintainer reports whether id was a maintainer at the given time.
	// A nil time asks whether id has ever been a maintainer.
	IsMaintainer(canonicalID string, at *time.Time) bool

	// Maintainers returns every participant with at least one interval, sorted.
	Maintainers() []string
}

// RecordClassifier tags one record or review.
// Implementations are pure and deterministic.
type RecordClassifier interface {
	Classify(record schema.Record) schema.Classification
	ClassifyReview(review schema.SubRecord) schema.ReviewClassification
	MapDomains(files []string) schema.DomainExpertise
}

// StoreManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
}

// AnalysisStore defines the interface for tracking analysis runs and storing metrics.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, runUUID string, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, stats schema.EnrichStats) error

	// RecordConcentration stores one concentration result; year 0 means all years
	RecordConcentration(analysisID int64, scope string, activity schema.Activity, year int, result schema.ConcentrationResult) error

	// RecordParticipantMetrics stores the per-node centrality of one relation
	RecordParticipantMetrics(analysisID int64, relation schema.Relation, nodes []schema.NodeMetrics) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every tracked run ordered by id
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllConcentrations returns every stored concentration row
	GetAllConcentrations() ([]schema.ConcentrationRecord, error)

	// GetAllParticipantMetrics returns every stored participant metrics row
	GetAllParticipantMetrics() ([]schema.ParticipantMetricsRecord, error)

	// Close closes the underlying connection
	Close() error
}
