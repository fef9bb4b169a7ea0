// Package algo has the scoring, trend, aggregation and ranking rules.
// Every function here is a pure transform over in-memory values.
package algo

import (
	"math"
	"sort"

	"github.com/deliverypulse/pulse/schema"
)

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ScoreEntity computes the Delivery Confidence Score (0-100) for one entity.
// Each penalty category is capped on its own; the critical-dependency
// surcharge is added after the dependency cap. Bonuses are summed and then
// capped before being applied.
func ScoreEntity(e schema.Entity, rules schema.Rules) schema.ScoredEntity {
	var drivers []schema.Driver
	add := func(key schema.DriverKey, contribution float64) {
		if contribution == 0 {
			return
		}
		drivers = append(drivers, schema.Driver{
			Key:          key,
			Label:        schema.DriverLabels[key],
			Contribution: contribution,
		})
	}

	// --- Penalties ---
	blocked := math.Min(rules.BlockedCap, e.BlockedDurationDays*rules.BlockedPerDay)
	scope := math.Min(rules.ScopeCap, float64(e.ScopeChangeEvents14d)*rules.ScopePerEvent)
	aging := math.Min(rules.AgingCap, e.DaysStagnant*rules.AgingPerDay)
	dependency := math.Min(rules.DependencyCap, float64(e.DependencyCount)*rules.DependencyPerItem)
	if e.DependencyCritical {
		dependency += rules.CriticalDependency
	}
	owner := math.Min(rules.OwnerCap, float64(e.OwnerChanges30d)*rules.OwnerPerChange)
	due := duePenalty(e, rules)

	penalties := []struct {
		key   schema.DriverKey
		value float64
	}{
		{schema.DriverBlocked, blocked},
		{schema.DriverScope, scope},
		{schema.DriverAging, aging},
		{schema.DriverDependency, dependency},
		{schema.DriverOwner, owner},
		{schema.DriverDueDate, due},
	}
	var totalPenalty float64
	for _, p := range penalties {
		totalPenalty += p.value
		add(p.key, -p.value)
	}

	// --- Bonuses ---
	var rawBonus float64
	if e.MeaningfulProgress7d {
		rawBonus += rules.ProgressBonus
		add(schema.DriverProgress, rules.ProgressBonus)
	}
	if e.TeamWIPUnderLimit {
		rawBonus += rules.WIPLimitBonus
		add(schema.DriverWIPLimit, rules.WIPLimitBonus)
	}
	if e.ScopeChangeEvents14d == 0 {
		rawBonus += rules.ScopeStableBonus
		add(schema.DriverScopeStable, rules.ScopeStableBonus)
	}
	cappedBonus := math.Min(rules.BonusCap, rawBonus)

	score := clamp(rules.BaseScore-totalPenalty+cappedBonus, 0, 100)
	SortDrivers(drivers)

	return schema.ScoredEntity{
		Entity:     e,
		DCSCurrent: score,
		Band:       rules.BandFor(score),
		Drivers:    drivers,
		Breakdown: schema.ScoreBreakdown{
			TotalPenalty: totalPenalty,
			RawBonus:     rawBonus,
			CappedBonus:  cappedBonus,
		},
	}
}

// duePenalty evaluates the due-date tiers. The nearer tier wins and the two
// tiers never stack.
func duePenalty(e schema.Entity, rules schema.Rules) float64 {
	if e.NearDone {
		return 0
	}
	switch {
	case e.DaysToTarget <= rules.DueNearDays:
		return rules.DueNearPenalty
	case e.DaysToTarget <= rules.DueSoonDays:
		return rules.DueSoonPenalty
	default:
		return 0
	}
}

// SortDrivers orders drivers by absolute contribution, largest first, with
// ties broken by the fixed component priority.
func SortDrivers(drivers []schema.Driver) {
	sort.SliceStable(drivers, func(i, j int) bool {
		ai, aj := math.Abs(drivers[i].Contribution), math.Abs(drivers[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return schema.PriorityOf(drivers[i].Key) < schema.PriorityOf(drivers[j].Key)
	})
}

// ScoreEntities scores every entity and preserves input order.
func ScoreEntities(entities []schema.Entity, rules schema.Rules) []schema.ScoredEntity {
	scored := make([]schema.ScoredEntity, len(entities))
	for i, e := range entities {
		scored[i] = ScoreEntity(e, rules)
	}
	return scored
}
