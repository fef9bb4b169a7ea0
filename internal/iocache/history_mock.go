package iocache

import (
	"context"
	"time"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(ctx context.Context, weekEnding string, startedAt time.Time, configParams map[string]any) (string, error) {
	args := m.Called(ctx, weekEnding, startedAt, configParams)
	return args.String(0), args.Error(1)
}

// RecordSnapshot implements the HistoryStore interface.
func (m *MockHistoryStore) RecordSnapshot(ctx context.Context, runID string, snap schema.Snapshot) error {
	args := m.Called(ctx, runID, snap)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(ctx context.Context, runID string, finishedAt time.Time, entityCount int) error {
	args := m.Called(ctx, runID, finishedAt, entityCount)
	return args.Error(0)
}

// LatestSnapshotBefore implements the HistoryStore interface.
func (m *MockHistoryStore) LatestSnapshotBefore(ctx context.Context, weekEnding string) (*schema.Snapshot, error) {
	args := m.Called(ctx, weekEnding)
	snap, _ := args.Get(0).(*schema.Snapshot)
	return snap, args.Error(1)
}

// ListRuns implements the HistoryStore interface.
func (m *MockHistoryStore) ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// ListEntityScores implements the HistoryStore interface.
func (m *MockHistoryStore) ListEntityScores(ctx context.Context, runID string) ([]schema.EntityScoreRecord, error) {
	args := m.Called(ctx, runID)
	scores, _ := args.Get(0).([]schema.EntityScoreRecord)
	return scores, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	args := m.Called()
	store, _ := args.Get(0).(contract.HistoryStore)
	return store
}
