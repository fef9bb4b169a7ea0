package schema

import "time"

// RunRecord represents a row from the pulse_runs table.
type RunRecord struct {
	RunID        string
	WeekEnding   string
	StartedAt    time.Time
	FinishedAt   *time.Time
	EntityCount  int32
	ConfigParams *string
}

// EntityScoreRecord represents a row from the pulse_entity_scores table.
type EntityScoreRecord struct {
	RunID      string
	EntityID   string
	Name       string
	WeekEnding string
	Position   int32
	DCSCurrent float64
	DCSPrior   *float64
	Delta      *float64
	Band       string
	Drivers    string // JSON-encoded []Driver
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int64            `json:"total_runs"`
	LastRunID      string           `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	LastWeekEnding string           `json:"last_week_ending"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}
