package parquet

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/deliverypulse/pulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	require.NotNil(t, s)

	for _, colName := range []string{"run_id", "week_ending", "started_at", "finished_at", "entity_count", "config_params"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestEntityScoreStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(EntityScore))
	require.NotNil(t, s)

	for _, colName := range []string{"run_id", "entity_id", "name", "week_ending", "position", "dcs_current", "dcs_prior", "delta", "band", "drivers"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

// readAll decodes every row of type T from an in-memory Parquet file.
func readAll[T any](t *testing.T, data []byte) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestWriteRows_Runs(t *testing.T) {
	finished := time.Date(2025, 1, 10, 9, 5, 0, 0, time.UTC)
	params := `{"limit":3}`
	records := []schema.RunRecord{
		{RunID: "run-1", WeekEnding: "2025-01-10", StartedAt: finished.Add(-time.Second), FinishedAt: &finished, EntityCount: 4, ConfigParams: &params},
		{RunID: "run-2", WeekEnding: "2025-01-17", StartedAt: finished.Add(time.Hour)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, ConvertRunRecords(records)))
	assert.Positive(t, buf.Len())

	got := readAll[Run](t, buf.Bytes())
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, int32(4), got[0].EntityCount)
	require.NotNil(t, got[0].FinishedAt)
	assert.WithinDuration(t, finished, *got[0].FinishedAt, time.Nanosecond)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)
	assert.Nil(t, got[1].FinishedAt)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteRows_EntityScores(t *testing.T) {
	prior := 80.0
	delta := -5.0
	records := []schema.EntityScoreRecord{
		{RunID: "run-1", EntityID: "INIT-1", Name: "Payments", WeekEnding: "2025-01-10", Position: 0, DCSCurrent: 75, DCSPrior: &prior, Delta: &delta, Band: "Green", Drivers: "[]"},
		{RunID: "run-1", EntityID: "INIT-2", Name: "Search", WeekEnding: "2025-01-10", Position: 1, DCSCurrent: 40, Band: "Red", Drivers: "[]"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, ConvertEntityScoreRecords(records)))

	got := readAll[EntityScore](t, buf.Bytes())
	require.Len(t, got, 2)
	assert.Equal(t, "INIT-1", got[0].EntityID)
	require.NotNil(t, got[0].Delta)
	assert.InDelta(t, -5.0, *got[0].Delta, 0.001)
	assert.Nil(t, got[1].DCSPrior)
	assert.Equal(t, int32(1), got[1].Position)
}

func TestConvertSnapshotAndHeatmap(t *testing.T) {
	snap := schema.Snapshot{
		WeekEnding: "2025-01-10",
		Entities: []schema.ScoredEntity{{
			Entity:     schema.Entity{ID: "INIT-1", Name: "Payments", Status: schema.StatusBlocked, BlockedDurationDays: 4, DaysToTarget: 9},
			DCSCurrent: 70,
			Band:       schema.YellowBand,
			Drivers:    []schema.Driver{{Key: schema.DriverBlocked, Contribution: -20}},
		}},
	}
	rows := ConvertSnapshot(snap)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-01-10", rows[0].WeekEnding)
	assert.Equal(t, "Blocked", rows[0].Status)
	assert.Equal(t, "blocked(-20)", rows[0].Drivers)
	assert.Equal(t, int32(9), rows[0].DaysToTarget)

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))
	assert.Len(t, readAll[ScoredEntity](t, buf.Bytes()), 1)

	h := schema.Heatmap{WeekEnding: "2025-01-10", Rows: []schema.HeatmapRow{{ID: "INIT-1", ConfidenceRisk: 5, DueProximity: 7}}}
	hrows := ConvertHeatmap(h)
	require.Len(t, hrows, 1)
	assert.Equal(t, int32(5), hrows[0].ConfidenceRisk)
	assert.Equal(t, int32(7), hrows[0].DueProximity)
}

func TestWriteRows_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, []Run{}))
	assert.Positive(t, buf.Len(), "an empty file still carries a footer")
	assert.Empty(t, readAll[Run](t, buf.Bytes()))
}
