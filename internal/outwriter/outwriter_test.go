package outwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBlobs struct {
	objects map[string][]byte
	err     error
}

func (m *memoryBlobs) Read(_ context.Context, uri string) ([]byte, error) {
	data, ok := m.objects[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryBlobs) Write(_ context.Context, uri string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[uri] = append([]byte(nil), data...)
	return nil
}

var _ contract.BlobStore = &memoryBlobs{}

func newTestWriter(blobs contract.BlobStore) (*OutWriter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &OutWriter{stdout: &stdout, stderr: &stderr, blobs: blobs}, &stdout, &stderr
}

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{Output: output, Precision: 1, Width: 200}
}

func sampleSnapshot() schema.Snapshot {
	return schema.Snapshot{
		WeekEnding: "2025-01-10",
		Entities: []schema.ScoredEntity{
			{
				Entity:     schema.Entity{ID: "INIT-1", Name: "Checkout Revamp", Status: schema.StatusBlocked, BlockedDurationDays: 4, DaysToTarget: 9, StatusNotes: "Vendor, API"},
				DCSCurrent: 70,
				DCSPrior:   schema.Float64Ptr(78),
				Delta:      schema.Float64Ptr(-8),
				Trend:      schema.TrendDown,
				Band:       schema.YellowBand,
				Drivers: []schema.Driver{
					{Key: schema.DriverBlocked, Label: "Blocked", Contribution: -20},
					{Key: schema.DriverDueDate, Label: "Due-Date Proximity", Contribution: -10},
				},
			},
			{
				Entity:     schema.Entity{ID: "INIT-2", Name: "Search Relevance", Status: schema.StatusInProgress, DaysToTarget: 40},
				DCSCurrent: 100,
				Band:       schema.GreenBand,
			},
		},
	}
}

func sampleSummary() schema.PortfolioSummary {
	return schema.PortfolioSummary{
		WeekEnding: "2025-01-10",
		Total:      2,
		Bands:      schema.BandCounts{Green: 1, Yellow: 1},
		AverageDCS: 85,
		MedianDCS:  85,
	}
}

func TestWriteScores_Stdout(t *testing.T) {
	ow, stdout, stderr := newTestWriter(nil)
	cfg := testConfig(schema.TextOut)
	cfg.Detail = true
	cfg.Explain = true

	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), cfg)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, strings.ToUpper(out), "BAND")
	assert.Contains(t, out, "Checkout Revamp")
	assert.Contains(t, out, "70.0")
	assert.Contains(t, out, "↓ -8")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "blocked(-20)")
	assert.Contains(t, out, "Week ending 2025-01-10: 2 entities (Green 1 / Yellow 1 / Red 0), average DCS 85.0")
	assert.Empty(t, stderr.String())
}

func TestWriteScores_JSONReadableAsPrior(t *testing.T) {
	ow, stdout, _ := newTestWriter(nil)
	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), testConfig(schema.JSONOut))
	require.NoError(t, err)

	var got struct {
		WeekEnding string `json:"week_ending"`
		Entities   []struct {
			ID         string   `json:"id"`
			DCSCurrent float64  `json:"dcs_current"`
			Delta      *float64 `json:"delta"`
			Band       string   `json:"band"`
		} `json:"entities"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "2025-01-10", got.WeekEnding)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, "INIT-1", got.Entities[0].ID)
	assert.Equal(t, 70.0, got.Entities[0].DCSCurrent)
	require.NotNil(t, got.Entities[0].Delta)
	assert.Equal(t, -8.0, *got.Entities[0].Delta)
	assert.Nil(t, got.Entities[1].Delta, "absent prior stays null, not zero")
}

func TestWriteScores_CSV(t *testing.T) {
	ow, stdout, _ := newTestWriter(nil)
	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), testConfig(schema.CSVOut))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,level,status,dcs_current,dcs_prior,delta,band"))
	assert.True(t, strings.HasPrefix(lines[1], "INIT-1,Checkout Revamp,,Blocked,70,78,-8,Yellow,↓,"))
	assert.Contains(t, lines[1], `"Vendor, API"`)
	assert.True(t, strings.HasPrefix(lines[2], "INIT-2,Search Relevance,,In Progress,100,,,Green,,"))
}

func TestWriteScores_YAML(t *testing.T) {
	ow, stdout, _ := newTestWriter(nil)
	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), testConfig(schema.YAMLOut))
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "week_ending:")
	assert.Contains(t, out, "2025-01-10")
	assert.Contains(t, out, "id: INIT-1")
	assert.Contains(t, out, "dcs_prior: null")
}

func TestWriteScores_ParquetToFile(t *testing.T) {
	blobs := &memoryBlobs{}
	ow, stdout, stderr := newTestWriter(blobs)
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = "s3://bucket/scores.parquet"

	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), cfg)
	require.NoError(t, err)

	data := blobs.objects["s3://bucket/scores.parquet"]
	require.NotEmpty(t, data)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "💾 Wrote scores to s3://bucket/scores.parquet\n", stderr.String())
}

func TestWriteScores_Markdown(t *testing.T) {
	ow, stdout, _ := newTestWriter(nil)
	cfg := testConfig(schema.MarkdownOut)
	cfg.UseColors = true

	err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), cfg)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "Checkout Revamp")
	assert.NotContains(t, out, "\x1b[", "markdown output is never colored")
}

func TestEmit_Errors(t *testing.T) {
	t.Run("no blob store", func(t *testing.T) {
		ow, _, _ := newTestWriter(nil)
		cfg := testConfig(schema.JSONOut)
		cfg.OutputFile = "out.json"
		err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), cfg)
		require.Error(t, err)
	})

	t.Run("write failure", func(t *testing.T) {
		ow, _, stderr := newTestWriter(&memoryBlobs{err: errors.New("denied")})
		cfg := testConfig(schema.JSONOut)
		cfg.OutputFile = "out.json"
		err := ow.WriteScores(context.Background(), sampleSnapshot(), sampleSummary(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "denied")
		assert.Empty(t, stderr.String())
	})

	t.Run("render failure writes nothing", func(t *testing.T) {
		blobs := &memoryBlobs{}
		ow, stdout, _ := newTestWriter(blobs)
		cfg := testConfig(schema.ParquetOut)
		err := ow.WriteRisks(context.Background(), "2025-01-10", nil, cfg)
		require.Error(t, err)
		assert.Empty(t, stdout.String())
		assert.Empty(t, blobs.objects)
	})
}

func TestWriteRisks(t *testing.T) {
	snap := sampleSnapshot()
	risks := []schema.RankedRisk{{Rank: 1, Entity: snap.Entities[0], DecisionPrompt: "Remove blocker or re-route critical path"}}

	t.Run("text", func(t *testing.T) {
		ow, stdout, _ := newTestWriter(nil)
		require.NoError(t, ow.WriteRisks(context.Background(), snap.WeekEnding, risks, testConfig(schema.TextOut)))
		out := stdout.String()
		assert.Contains(t, out, "INIT-1")
		assert.Contains(t, out, "blocker")
		assert.Contains(t, out, "9d")
		assert.Contains(t, out, "Showing 1 emerging risks")
	})

	t.Run("csv", func(t *testing.T) {
		ow, stdout, _ := newTestWriter(nil)
		require.NoError(t, ow.WriteRisks(context.Background(), snap.WeekEnding, risks, testConfig(schema.CSVOut)))
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "rank,id,name,dcs_current,delta,band,trend_symbol,days_to_target,decision_prompt,drivers", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "1,INIT-1,Checkout Revamp,70,-8,Yellow,↓,9,"))
	})

	t.Run("json", func(t *testing.T) {
		ow, stdout, _ := newTestWriter(nil)
		require.NoError(t, ow.WriteRisks(context.Background(), snap.WeekEnding, risks, testConfig(schema.JSONOut)))
		var got struct {
			WeekEnding string              `json:"week_ending"`
			Risks      []schema.RankedRisk `json:"risks"`
		}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		require.Len(t, got.Risks, 1)
		assert.Equal(t, 1, got.Risks[0].Rank)
		assert.Equal(t, "INIT-1", got.Risks[0].Entity.ID)
	})
}

func TestWriteBrief(t *testing.T) {
	text := "# Weekly Executive Brief — Week Ending 2025-01-10\n"

	ow, stdout, _ := newTestWriter(nil)
	require.NoError(t, ow.WriteBrief(context.Background(), "2025-01-10", text, testConfig(schema.MarkdownOut)))
	assert.Equal(t, text, stdout.String())

	ow, stdout, _ = newTestWriter(nil)
	require.NoError(t, ow.WriteBrief(context.Background(), "2025-01-10", text, testConfig(schema.JSONOut)))
	var got map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, text, got["brief"])
	assert.Equal(t, "2025-01-10", got["week_ending"])
}

func TestWriteRules(t *testing.T) {
	rules := schema.DefaultRules()

	ow, stdout, _ := newTestWriter(nil)
	require.NoError(t, ow.WriteRules(context.Background(), rules, testConfig(schema.CSVOut)))
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, len(ruleEntries(rules))+1)
	assert.Equal(t, "rule,value,description", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "base_score,100,"))
	assert.Contains(t, lines, "max_dependency_density,20,Largest possible Dependency Density penalty")
	assert.Contains(t, lines, "max_due_date_proximity,15,Largest possible Due-Date Proximity penalty")

	ow, stdout, _ = newTestWriter(nil)
	require.NoError(t, ow.WriteRules(context.Background(), rules, testConfig(schema.JSONOut)))
	var got schema.Rules
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, rules, got)

	ow, stdout, _ = newTestWriter(nil)
	require.NoError(t, ow.WriteRules(context.Background(), rules, testConfig(schema.TextOut)))
	assert.Contains(t, stdout.String(), "green_threshold")
}

func TestWriteRows(t *testing.T) {
	fields := []string{"id", "name", "status_notes"}
	rows := []map[string]string{
		{"id": "INIT-1", "name": "Checkout", "status_notes": "a; b"},
		{"id": "INIT-2", "name": "Search"},
	}

	ow, stdout, _ := newTestWriter(nil)
	require.NoError(t, ow.WriteRows(context.Background(), "2025-01-10", fields, rows, testConfig(schema.TextOut)))
	assert.Equal(t, "id,name,status_notes\nINIT-1,Checkout,a; b\nINIT-2,Search,\n", stdout.String())

	ow, _, _ = newTestWriter(nil)
	require.Error(t, ow.WriteRows(context.Background(), "2025-01-10", fields, rows, testConfig(schema.ParquetOut)))
}
