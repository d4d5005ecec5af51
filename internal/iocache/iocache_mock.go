package iocache

import (
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetAnalysisStore implements the StoreManager interface.
func (m *MockStoreManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginAnalysis(startTime time.Time, runUUID string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, runUUID, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndAnalysis(analysisID int64, endTime time.Time, stats schema.EnrichStats) error {
	args := m.Called(analysisID, endTime, stats)
	return args.Error(0)
}

// RecordConcentration implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordConcentration(analysisID int64, scope string, activity schema.Activity, year int, result schema.ConcentrationResult) error {
	args := m.Called(analysisID, scope, activity, year, result)
	return args.Error(0)
}

// RecordParticipantMetrics implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordParticipantMetrics(analysisID int64, relation schema.Relation, nodes []schema.NodeMetrics) error {
	args := m.Called(analysisID, relation, nodes)
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllAnalysisRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return runs, args.Error(1)
}

// GetAllConcentrations implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllConcentrations() ([]schema.ConcentrationRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.ConcentrationRecord)
	return rows, args.Error(1)
}

// GetAllParticipantMetrics implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllParticipantMetrics() ([]schema.ParticipantMetricsRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.ParticipantMetricsRecord)
	return rows, args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
