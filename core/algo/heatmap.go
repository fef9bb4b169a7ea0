package algo

import (
	"math"
	"sort"

	"github.com/deliverypulse/pulse/schema"
)

// Heatmap scales. Each value maps linearly onto 0-10 and saturates.
const (
	confidenceSpread = 60.0 // points of DCS below 100 that reach full scale
	blockedFullScale = 5.0  // blocked days
	scopeFullScale   = 5.0  // scope changes in 14 days
	depsFullScale    = 6.0  // dependency count
	depsCriticalBump = 2    // added when a dependency is critical
	stagnantFull     = 6.0  // stagnant days
)

// HeatmapLabels lists the heatmap columns in display order.
var HeatmapLabels = []string{
	"Confidence Risk",
	"Blocked",
	"Scope Volatility",
	"Dependencies",
	"Due Proximity",
	"Stagnation",
}

// scoreZeroToTen scales value against fullScale onto an integer 0-10.
func scoreZeroToTen(value, fullScale float64) int {
	if fullScale <= 0 {
		return 0
	}
	return int(math.Round(clamp(value/fullScale*10, 0, 10)))
}

// dueProximity maps days to target onto a stepped 0-10 intensity.
func dueProximity(daysToTarget int) int {
	switch {
	case daysToTarget <= 7:
		return 10
	case daysToTarget <= 14:
		return 7
	case daysToTarget <= 21:
		return 4
	default:
		return 1
	}
}

// HeatmapRowFor computes the risk intensities for one entity.
func HeatmapRowFor(e schema.ScoredEntity) schema.HeatmapRow {
	deps := scoreZeroToTen(float64(e.DependencyCount), depsFullScale)
	if e.DependencyCritical {
		deps = min(10, deps+depsCriticalBump)
	}
	return schema.HeatmapRow{
		ID:              e.ID,
		Name:            e.Name,
		Band:            e.Band,
		DCSCurrent:      e.DCSCurrent,
		ConfidenceRisk:  scoreZeroToTen(100-e.DCSCurrent, confidenceSpread),
		Blocked:         scoreZeroToTen(e.BlockedDurationDays, blockedFullScale),
		ScopeVolatility: scoreZeroToTen(float64(e.ScopeChangeEvents14d), scopeFullScale),
		Dependencies:    deps,
		DueProximity:    dueProximity(e.DaysToTarget),
		Stagnation:      scoreZeroToTen(e.DaysStagnant, stagnantFull),
	}
}

// BuildHeatmap computes the per-entity driver matrix, worst rows first.
func BuildHeatmap(snap schema.Snapshot) schema.Heatmap {
	rows := make([]schema.HeatmapRow, len(snap.Entities))
	totals := make([]int, len(HeatmapLabels))
	for i, e := range snap.Entities {
		row := HeatmapRowFor(e)
		rows[i] = row
		for j, v := range row.Values() {
			totals[j] += v
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ConfidenceRisk != b.ConfidenceRisk {
			return a.ConfidenceRisk > b.ConfidenceRisk
		}
		if a.DueProximity != b.DueProximity {
			return a.DueProximity > b.DueProximity
		}
		if a.Blocked != b.Blocked {
			return a.Blocked > b.Blocked
		}
		return a.ID < b.ID
	})

	columns := make([]schema.HeatmapColumn, len(HeatmapLabels))
	for i, label := range HeatmapLabels {
		columns[i] = schema.HeatmapColumn{Label: label, Total: totals[i]}
	}

	return schema.Heatmap{
		WeekEnding: snap.WeekEnding,
		Rows:       rows,
		Totals:     columns,
	}
}
