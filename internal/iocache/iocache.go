// Package iocache persists scored runs so later runs can compare against them.
package iocache

import (
	"sync"

	"github.com/deliverypulse/pulse/internal/contract"
)

// HistoryStoreManager guards the process-wide HistoryStore.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{}

// GetHistoryStore returns the history store, or nil when not initialized.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
