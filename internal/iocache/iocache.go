// Package iocache tracks analysis runs and their metrics in a SQL store.
package iocache

import (
	"sync"

	"github.com/huangsam/govscope/internal/contract"
)

// AnalysisStoreManager holds the configured AnalysisStore.
type AnalysisStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	analysis     contract.AnalysisStore
}

var _ contract.StoreManager = &AnalysisStoreManager{} // Compile-time check

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *AnalysisStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
