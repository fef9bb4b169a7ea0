package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/iocache"
	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// writeInput stores content in a temp file and returns its path.
func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runConfig(t *testing.T, input string, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		InputPath:     input,
		InputFormat:   schema.AutoInput,
		WeekEnding:    "2025-01-10",
		RiskLimit:     3,
		PositiveLimit: 3,
		Precision:     1,
		Output:        output,
		OutputFile:    filepath.Join(t.TempDir(), "out", "result"),
		Width:         200,
		Rules:         schema.DefaultRules(),
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

// TestExecuteBrief_NoHistory runs the brief end to end without a history store.
func TestExecuteBrief_NoHistory(t *testing.T) {
	cfg := runConfig(t, writeInput(t, "snapshot.csv", sampleCSV), schema.MarkdownOut)

	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(nil)

	require.NoError(t, ExecuteBrief(context.Background(), cfg, mgr))
	out := readOutput(t, cfg)
	assert.True(t, strings.HasPrefix(out, "# Weekly Executive Brief — Week Ending 2025-01-10\n"))
	assert.Contains(t, out, "## Decision Prompts Summary")
	mgr.AssertExpectations(t)
}

// TestExecuteScore_PriorFromHistoryAndRecord checks that the history store
// supplies the prior and receives the run after output is written.
func TestExecuteScore_PriorFromHistoryAndRecord(t *testing.T) {
	cfg := runConfig(t, writeInput(t, "snapshot.csv", sampleCSV), schema.JSONOut)
	cfg.Record = true

	prior := &schema.Snapshot{
		WeekEnding: "2025-01-03",
		Entities: []schema.ScoredEntity{
			{Entity: schema.Entity{ID: "INIT-1"}, DCSCurrent: 80},
			{Entity: schema.Entity{ID: "INIT-2"}, DCSCurrent: 100},
			{Entity: schema.Entity{ID: "INIT-3"}, DCSCurrent: 40},
		},
	}

	store := &iocache.MockHistoryStore{}
	store.On("LatestSnapshotBefore", mock.Anything, "2025-01-10").Return(prior, nil)
	store.On("BeginRun", mock.Anything, "2025-01-10", mock.Anything, mock.Anything).Return("run-1", nil)
	store.On("RecordSnapshot", mock.Anything, "run-1", mock.MatchedBy(func(s schema.Snapshot) bool {
		e, ok := s.Lookup("INIT-3")
		return ok && e.Delta != nil && *e.Delta == 3
	})).Return(nil)
	store.On("EndRun", mock.Anything, "run-1", mock.Anything, 3).Return(nil)

	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	require.NoError(t, ExecuteScore(context.Background(), cfg, mgr))
	assert.Contains(t, readOutput(t, cfg), `"week_ending": "2025-01-10"`)
	store.AssertExpectations(t)
}

// TestExecuteScore_ExplicitPriorSkipsHistory checks that --prior wins.
func TestExecuteScore_ExplicitPriorSkipsHistory(t *testing.T) {
	cfg := runConfig(t, writeInput(t, "snapshot.csv", sampleCSV), schema.CSVOut)
	cfg.PriorPath = writeInput(t, "prior.json", `{"week_ending":"2025-01-03","entities":[{"id":"INIT-1","name":"Checkout Revamp","dcs_current":70,"band":"Yellow"},{"id":"INIT-2","dcs_current":100,"band":"Green"}]}`)

	store := &iocache.MockHistoryStore{}
	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	require.NoError(t, ExecuteScore(context.Background(), cfg, mgr))
	out := readOutput(t, cfg)
	assert.Contains(t, out, "INIT-1,Checkout Revamp,,Blocked,75,70,5,Green,↑,")
	store.AssertNotCalled(t, "LatestSnapshotBefore", mock.Anything, mock.Anything)
}

// TestExecuteRun_FailureWritesNothing checks that no output or history
// write happens when the input is invalid.
func TestExecuteRun_FailureWritesNothing(t *testing.T) {
	bad := "id,name,dependency_count\nINIT-1,Broken,-2\n"
	cfg := runConfig(t, writeInput(t, "snapshot.csv", bad), schema.TextOut)
	cfg.Record = true

	store := &iocache.MockHistoryStore{}
	store.On("LatestSnapshotBefore", mock.Anything, "2025-01-10").Return((*schema.Snapshot)(nil), nil)
	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	err := ExecuteRisks(context.Background(), cfg, mgr)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))

	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
	store.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteRun_HistoryError(t *testing.T) {
	cfg := runConfig(t, writeInput(t, "snapshot.csv", sampleCSV), schema.TextOut)

	store := &iocache.MockHistoryStore{}
	store.On("LatestSnapshotBefore", mock.Anything, "2025-01-10").Return((*schema.Snapshot)(nil), errors.New("db down"))
	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	err := ExecuteHeatmap(context.Background(), cfg, mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestExecuteHeatmap_Markdown(t *testing.T) {
	cfg := runConfig(t, writeInput(t, "snapshot.csv", sampleCSV), schema.MarkdownOut)
	require.NoError(t, ExecuteHeatmap(context.Background(), cfg, nil))
	assert.Contains(t, readOutput(t, cfg), "# Portfolio Heatmap Summary — Week Ending 2025-01-10")
}

func TestExecuteTransform(t *testing.T) {
	export := `Issue key,Issue Type,Summary,Status,Parent key,Story Points,Due date
INIT-1,Initiative,Checkout Revamp,In Progress,,,2025-01-20
EPIC-1,Epic,Payments,In Progress,INIT-1,,
STORY-1,Story,Card form,Done,EPIC-1,5,
STORY-2,Story,Wallets,In Progress,EPIC-1,5,
`
	cfg := runConfig(t, writeInput(t, "jira.csv", export), schema.CSVOut)
	require.NoError(t, ExecuteTransform(context.Background(), cfg, nil))

	lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,level,status,"))
	assert.True(t, strings.HasPrefix(lines[1], "INIT-1,Checkout Revamp,"))
}

func TestExecuteRules(t *testing.T) {
	cfg := runConfig(t, "", schema.CSVOut)
	require.NoError(t, ExecuteRules(context.Background(), cfg, nil))
	assert.Contains(t, readOutput(t, cfg), "green_threshold,75,")
}

func TestReadSource_Stdin(t *testing.T) {
	orig := stdin
	t.Cleanup(func() { stdin = orig })
	stdin = strings.NewReader(sampleCSV)

	data, err := readSource(context.Background(), nil, StdinPath)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))

	_, err = readSource(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestRecordRun_Errors(t *testing.T) {
	snap := schema.Snapshot{WeekEnding: "2025-01-10"}
	cfg := &contract.Config{Rules: schema.DefaultRules()}

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, "2025-01-10", mock.Anything, mock.Anything).Return("", errors.New("locked"))
	err := RecordRun(context.Background(), store, cfg, snap, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin run")

	store = &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, "2025-01-10", mock.Anything, mock.Anything).Return("run-9", nil)
	store.On("RecordSnapshot", mock.Anything, "run-9", snap).Return(errors.New("disk full"))
	err = RecordRun(context.Background(), store, cfg, snap, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record snapshot")
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
