// Package contract provides interfaces and shared utilities for the internal architecture of pulse.
package contract

import (
	"context"
	"time"

	"github.com/deliverypulse/pulse/schema"
)

// HistoryManager hands out the history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the operations for tracking scored runs.
// Writes happen only after a run has been scored and rendered.
type HistoryStore interface {
	// BeginRun creates a new run for a week ending and returns its unique ID.
	BeginRun(ctx context.Context, weekEnding string, startedAt time.Time, configParams map[string]any) (string, error)

	// RecordSnapshot stores every scored entity of a run.
	RecordSnapshot(ctx context.Context, runID string, snap schema.Snapshot) error

	// EndRun marks the run as finished.
	EndRun(ctx context.Context, runID string, finishedAt time.Time, entityCount int) error

	// LatestSnapshotBefore returns the newest finished snapshot whose week
	// ending is strictly before the given one, or nil when there is none.
	LatestSnapshotBefore(ctx context.Context, weekEnding string) (*schema.Snapshot, error)

	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error)

	// ListEntityScores returns the stored entity scores of a run in rank order.
	ListEntityScores(ctx context.Context, runID string) ([]schema.EntityScoreRecord, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// BlobStore reads and writes whole objects by URI.
type BlobStore interface {
	Read(ctx context.Context, uri string) ([]byte, error)
	Write(ctx context.Context, uri string, data []byte) error
}
