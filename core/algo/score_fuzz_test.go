package algo

import (
	"math"
	"testing"

	"github.com/deliverypulse/pulse/schema"
)

// FuzzScoreEntity checks score bounds and per-category caps on random entities.
func FuzzScoreEntity(f *testing.F) {
	f.Add(4.0, 0, 0.0, 0, false, 0, 9, false, false, false)
	f.Add(0.0, 0, 0.0, 10, true, 0, 30, false, false, false)
	f.Add(100.0, 50, 80.0, 99, true, 20, -30, false, true, true)
	f.Add(0.0, 0, 0.0, 0, false, 0, 100, true, true, true)

	rules := schema.DefaultRules()

	f.Fuzz(func(t *testing.T,
		blocked float64,
		scope int,
		stagnant float64,
		deps int,
		critical bool,
		owners int,
		daysToTarget int,
		nearDone bool,
		progress bool,
		wip bool,
	) {
		if math.IsNaN(blocked) || math.IsInf(blocked, 0) || math.IsNaN(stagnant) || math.IsInf(stagnant, 0) {
			return
		}
		e := schema.Entity{
			ID:                   "FUZZ",
			BlockedDurationDays:  math.Abs(blocked),
			ScopeChangeEvents14d: absInt(scope),
			DaysStagnant:         math.Abs(stagnant),
			DependencyCount:      absInt(deps),
			DependencyCritical:   critical,
			OwnerChanges30d:      absInt(owners),
			DaysToTarget:         daysToTarget,
			NearDone:             nearDone,
			MeaningfulProgress7d: progress,
			TeamWIPUnderLimit:    wip,
		}
		got := ScoreEntity(e, rules)

		if got.DCSCurrent < 0 || got.DCSCurrent > 100 {
			t.Fatalf("score out of range: %v", got.DCSCurrent)
		}
		if got.Breakdown.CappedBonus > rules.BonusCap {
			t.Fatalf("bonus above cap: %v", got.Breakdown.CappedBonus)
		}
		for _, key := range schema.PenaltyDrivers {
			if p := got.Penalty(key); p > rules.PenaltyCap(key) {
				t.Fatalf("penalty %s above cap: %v", key, p)
			}
		}
		if got.Band != rules.BandFor(got.DCSCurrent) {
			t.Fatalf("band %s does not match score %v", got.Band, got.DCSCurrent)
		}
	})
}

func absInt(v int) int {
	if v < 0 {
		if v == math.MinInt {
			return math.MaxInt
		}
		return -v
	}
	return v
}
