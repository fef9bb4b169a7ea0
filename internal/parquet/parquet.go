// Package parquet provides data structures and functions for exporting pulse
// scores and run history to Parquet using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"time"

	"github.com/deliverypulse/pulse/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single scored run with metadata.
// This struct maps to the pulse_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// WeekEnding is the snapshot date (YYYY-MM-DD)
	WeekEnding string `parquet:"week_ending,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the run completed (nullable)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// EntityCount is the number of entities scored in this run
	EntityCount int32 `parquet:"entity_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// EntityScore represents one stored entity score.
// This struct maps to the pulse_entity_scores database table.
type EntityScore struct {
	RunID      string   `parquet:"run_id,snappy"`
	EntityID   string   `parquet:"entity_id,snappy"`
	Name       string   `parquet:"name,snappy"`
	WeekEnding string   `parquet:"week_ending,snappy"`
	Position   int32    `parquet:"position,snappy"`
	DCSCurrent float64  `parquet:"dcs_current,snappy"`
	DCSPrior   *float64 `parquet:"dcs_prior,optional,snappy"`
	Delta      *float64 `parquet:"delta,optional,snappy"`
	Band       string   `parquet:"band,snappy"`

	// Drivers is the JSON-encoded driver list
	Drivers string `parquet:"drivers,snappy"`
}

// ScoredEntity is the flat row written by the score command.
type ScoredEntity struct {
	ID                   string   `parquet:"id,snappy"`
	Name                 string   `parquet:"name,snappy"`
	Level                string   `parquet:"level,snappy"`
	Status               string   `parquet:"status,snappy"`
	WeekEnding           string   `parquet:"week_ending,snappy"`
	DCSCurrent           float64  `parquet:"dcs_current,snappy"`
	DCSPrior             *float64 `parquet:"dcs_prior,optional,snappy"`
	Delta                *float64 `parquet:"delta,optional,snappy"`
	Band                 string   `parquet:"band,snappy"`
	Trend                string   `parquet:"trend_symbol,snappy"`
	Drivers              string   `parquet:"drivers,snappy"`
	BlockedDurationDays  float64  `parquet:"blocked_duration_days,snappy"`
	ScopeChangeEvents14d int32    `parquet:"scope_change_events_14d,snappy"`
	DaysStagnant         float64  `parquet:"days_stagnant,snappy"`
	DependencyCount      int32    `parquet:"dependency_count,snappy"`
	DependencyCritical   bool     `parquet:"dependency_critical"`
	OwnerChanges30d      int32    `parquet:"owner_changes_30d,snappy"`
	DaysToTarget         int32    `parquet:"days_to_target,snappy"`
	StatusNotes          string   `parquet:"status_notes,snappy"`
}

// HeatmapRow is the flat row written by the heatmap command.
type HeatmapRow struct {
	WeekEnding      string  `parquet:"week_ending,snappy"`
	ID              string  `parquet:"id,snappy"`
	Name            string  `parquet:"name,snappy"`
	Band            string  `parquet:"band,snappy"`
	DCSCurrent      float64 `parquet:"dcs_current,snappy"`
	ConfidenceRisk  int32   `parquet:"confidence_risk,snappy"`
	Blocked         int32   `parquet:"blocked,snappy"`
	ScopeVolatility int32   `parquet:"scope_volatility,snappy"`
	Dependencies    int32   `parquet:"dependencies,snappy"`
	DueProximity    int32   `parquet:"due_proximity,snappy"`
	Stagnation      int32   `parquet:"stagnation,snappy"`
}

// WriteRows writes rows of any tagged struct type as one Parquet file.
// The schema is derived from the struct tags of T.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			WeekEnding:   record.WeekEnding,
			StartedAt:    record.StartedAt,
			FinishedAt:   record.FinishedAt,
			EntityCount:  record.EntityCount,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertEntityScoreRecords converts schema.EntityScoreRecord to EntityScore for Parquet export.
func ConvertEntityScoreRecords(records []schema.EntityScoreRecord) []EntityScore {
	result := make([]EntityScore, len(records))
	for i, record := range records {
		result[i] = EntityScore{
			RunID:      record.RunID,
			EntityID:   record.EntityID,
			Name:       record.Name,
			WeekEnding: record.WeekEnding,
			Position:   record.Position,
			DCSCurrent: record.DCSCurrent,
			DCSPrior:   record.DCSPrior,
			Delta:      record.Delta,
			Band:       record.Band,
			Drivers:    record.Drivers,
		}
	}
	return result
}

// ConvertSnapshot flattens a scored snapshot for Parquet output.
func ConvertSnapshot(snap schema.Snapshot) []ScoredEntity {
	result := make([]ScoredEntity, len(snap.Entities))
	for i, e := range snap.Entities {
		result[i] = ScoredEntity{
			ID:                   e.ID,
			Name:                 e.Name,
			Level:                e.Level,
			Status:               string(e.Status),
			WeekEnding:           snap.WeekEnding,
			DCSCurrent:           e.DCSCurrent,
			DCSPrior:             e.DCSPrior,
			Delta:                e.Delta,
			Band:                 string(e.Band),
			Trend:                string(e.Trend),
			Drivers:              schema.FormatDrivers(e.Drivers),
			BlockedDurationDays:  e.BlockedDurationDays,
			ScopeChangeEvents14d: int32(e.ScopeChangeEvents14d),
			DaysStagnant:         e.DaysStagnant,
			DependencyCount:      int32(e.DependencyCount),
			DependencyCritical:   e.DependencyCritical,
			OwnerChanges30d:      int32(e.OwnerChanges30d),
			DaysToTarget:         int32(e.DaysToTarget),
			StatusNotes:          e.StatusNotes,
		}
	}
	return result
}

// ConvertHeatmap flattens heatmap rows for Parquet output.
func ConvertHeatmap(h schema.Heatmap) []HeatmapRow {
	result := make([]HeatmapRow, len(h.Rows))
	for i, r := range h.Rows {
		result[i] = HeatmapRow{
			WeekEnding:      h.WeekEnding,
			ID:              r.ID,
			Name:            r.Name,
			Band:            string(r.Band),
			DCSCurrent:      r.DCSCurrent,
			ConfidenceRisk:  int32(r.ConfidenceRisk),
			Blocked:         int32(r.Blocked),
			ScopeVolatility: int32(r.ScopeVolatility),
			Dependencies:    int32(r.Dependencies),
			DueProximity:    int32(r.DueProximity),
			Stagnation:      int32(r.Stagnation),
		}
	}
	return result
}
