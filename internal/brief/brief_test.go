package brief

import (
	"errors"
	"strings"
	"testing"

	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id, name string, dcs float64, band schema.Band, delta *float64, trend schema.Trend) schema.ScoredEntity {
	return schema.ScoredEntity{
		Entity:     schema.Entity{ID: id, Name: name, DaysToTarget: 9},
		DCSCurrent: dcs,
		Band:       band,
		Delta:      delta,
		Trend:      trend,
	}
}

func sampleInput() Input {
	risk := scored("INIT-1", "Checkout Revamp", 52, schema.RedBand, schema.Float64Ptr(-8), schema.TrendDown)
	risk.BlockedDurationDays = 4
	risk.ScopeChangeEvents14d = 3
	risk.StatusNotes = "Waiting on vendor API; QA env down"

	positive := scored("INIT-2", "Search Relevance", 84, schema.GreenBand, schema.Float64Ptr(6), schema.TrendUp)
	positive.DaysToTarget = 30

	return Input{
		Summary: schema.PortfolioSummary{
			WeekEnding: "2025-01-10",
			Total:      2,
			Bands:      schema.BandCounts{Green: 1, Red: 1},
			AverageDCS: 68,
			MedianDCS:  68,
			LargestDecline: &schema.Mover{
				ID: "INIT-1", Name: "Checkout Revamp", Band: schema.RedBand,
				DCSCurrent: 52, Delta: -8, Trend: schema.TrendDown,
			},
			LargestImprovement: &schema.Mover{
				ID: "INIT-2", Name: "Search Relevance", Band: schema.GreenBand,
				DCSCurrent: 84, Delta: 6, Trend: schema.TrendUp,
			},
			DriverIntensity: []schema.DriverIntensity{
				{Key: schema.DriverBlocked, Label: "Blocked", Intensity: 10},
				{Key: schema.DriverScope, Label: "Scope Volatility", Intensity: 10},
				{Key: schema.DriverAging, Label: "Aging WIP", Intensity: 0},
				{Key: schema.DriverDueDate, Label: "Due-Date Proximity", Intensity: 5},
			},
		},
		Risks: []schema.RankedRisk{
			{Rank: 1, Entity: risk, DecisionPrompt: "Freeze scope / lock acceptance criteria"},
		},
		Positives: []schema.ScoredEntity{positive},
	}
}

func TestRender_SectionOrder(t *testing.T) {
	out, err := Render(sampleInput())
	require.NoError(t, err)

	headings := []string{
		"# Weekly Executive Brief — Week Ending 2025-01-10",
		"## Portfolio Snapshot",
		"## Top Emerging Risks (Decision-Oriented)",
		"## Notable Positive Momentum",
		"## Decision Prompts Summary",
		Disclaimer,
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "missing %q", h)
		assert.Greater(t, idx, last, "%q out of order", h)
		last = idx
	}
	assert.True(t, strings.HasSuffix(out, Disclaimer+"\n"))
}

func TestRender_Content(t *testing.T) {
	out, err := Render(sampleInput())
	require.NoError(t, err)

	assert.Contains(t, out, "- Total initiatives: **2**")
	assert.Contains(t, out, "- Confidence bands: **Green 1** / **Yellow 0** / **Red 1**")
	assert.Contains(t, out, "- Average confidence: **68** (median **68**)")
	assert.Contains(t, out, "- Largest decline: **Checkout Revamp** (Red, 52 ↓ -8)")
	assert.Contains(t, out, "- Largest improvement: **Search Relevance** (Green, 84 ↑ +6)")
	assert.Contains(t, out, "- Top risk drivers: Blocked (10/10), Scope Volatility (10/10), Due-Date Proximity (5/10)")
	assert.Contains(t, out, "- **Checkout Revamp** — Red (**52 ↓ -8**) | Drivers: blocked 4d, scope changes 3/14d | Target: 9d\n"+
		"  - Decision prompt: *Freeze scope / lock acceptance criteria*\n"+
		"  - Context: Waiting on vendor API\n")
	assert.Contains(t, out, "- **Search Relevance** — Green (**84 ↑ +6**) | Target: 30d\n")
	assert.NotContains(t, out, NoPositiveMomentum)
}

func TestRender_EmptySectionsDegrade(t *testing.T) {
	in := Input{Summary: schema.PortfolioSummary{WeekEnding: "2025-01-10"}}
	out, err := Render(in)
	require.NoError(t, err)

	assert.Contains(t, out, NoPositiveMomentum)
	assert.Contains(t, out, "- Largest decline: n/a (no prior week data)")
	assert.Contains(t, out, "- Average confidence: n/a (no initiatives)\n")
	assert.NotContains(t, out, "**0** (median **0**)")
	assert.Contains(t, out, "- Top risk drivers: none")
	assert.Contains(t, out, "- No entities currently rank as emerging risks.")
}

func TestRender_NoContextLineWithoutNotes(t *testing.T) {
	in := sampleInput()
	in.Risks[0].Entity.StatusNotes = ""
	out, err := Render(in)
	require.NoError(t, err)
	assert.NotContains(t, out, "Context:")
}

func TestRender_Errors(t *testing.T) {
	t.Run("missing week ending", func(t *testing.T) {
		in := sampleInput()
		in.Summary.WeekEnding = ""
		_, err := Render(in)
		var re *schema.RenderError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, SectionHeader, re.Section)
	})

	t.Run("band counts disagree with total", func(t *testing.T) {
		in := sampleInput()
		in.Summary.Total = 5
		_, err := Render(in)
		var re *schema.RenderError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, SectionSnapshot, re.Section)
	})
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(sampleInput())
	require.NoError(t, err)
	b, err := Render(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRiskDrivers(t *testing.T) {
	tests := []struct {
		name     string
		entity   schema.Entity
		expected string
	}{
		{"nothing notable", schema.Entity{BlockedDurationDays: 1, DependencyCount: 3}, "signal review needed"},
		{"fractional blocked", schema.Entity{BlockedDurationDays: 2.5}, "blocked 2.5d"},
		{"stagnant", schema.Entity{DaysStagnant: 4}, "stagnant 4d"},
		{"critical dependency", schema.Entity{DependencyCount: 1, DependencyCritical: true}, "deps 1 (critical)"},
		{"many dependencies", schema.Entity{DependencyCount: 5}, "deps 5"},
		{
			"all drivers",
			schema.Entity{BlockedDurationDays: 3, ScopeChangeEvents14d: 2, DaysStagnant: 6, DependencyCount: 4, DependencyCritical: true},
			"blocked 3d, scope changes 2/14d, stagnant 6d, deps 4 (critical)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RiskDrivers(schema.ScoredEntity{Entity: tt.entity}))
		})
	}
}

func TestFirstNote(t *testing.T) {
	assert.Equal(t, "", FirstNote(schema.ScoredEntity{}))
	assert.Equal(t, "one", FirstNote(schema.ScoredEntity{Entity: schema.Entity{StatusNotes: "one"}}))
	assert.Equal(t, "one", FirstNote(schema.ScoredEntity{Entity: schema.Entity{StatusNotes: " one ; two"}}))
}

func TestRenderHeatmap(t *testing.T) {
	h := schema.Heatmap{
		WeekEnding: "2025-01-10",
		Rows: []schema.HeatmapRow{
			{ID: "A", Name: "Alpha", ConfidenceRisk: 8, DueProximity: 10, Blocked: 8, ScopeVolatility: 6, Dependencies: 4, Stagnation: 2},
			{ID: "B", Name: "Beta", ConfidenceRisk: 5},
			{ID: "C", Name: "Gamma", ConfidenceRisk: 3},
			{ID: "D", Name: "Delta", ConfidenceRisk: 1},
		},
		Totals: []schema.HeatmapColumn{
			{Label: "Confidence Risk", Total: 17},
			{Label: "Blocked", Total: 8},
			{Label: "Due Proximity", Total: 22},
		},
	}
	out, err := RenderHeatmap(h)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Portfolio Heatmap Summary — Week Ending 2025-01-10\n"))
	assert.Contains(t, out, "## Highest Portfolio Risk Drivers (aggregate intensity)\n- **Due Proximity**: 22\n- **Confidence Risk**: 17\n- **Blocked**: 8\n")
	assert.Contains(t, out, "- **Alpha** | Confidence 8 | Due 10 | Blocked 8 | Scope 6 | Deps 4 | Stagnation 2\n")
	assert.Contains(t, out, "**Gamma**")
	assert.NotContains(t, out, "**Delta**")
	assert.True(t, strings.HasSuffix(out, "> Scores are normalized 0–10 per driver (10 = highest risk intensity).\n"))

	// input totals are left untouched
	assert.Equal(t, "Confidence Risk", h.Totals[0].Label)
}

func TestRenderHeatmap_Empty(t *testing.T) {
	out, err := RenderHeatmap(schema.Heatmap{WeekEnding: "2025-01-10"})
	require.NoError(t, err)
	assert.Contains(t, out, "## Top 3 Initiatives by Combined Risk (from heatmap)\n\n>")
}
