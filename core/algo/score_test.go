package algo

import (
	"testing"

	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driverKeys returns the driver keys in order.
func driverKeys(drivers []schema.Driver) []schema.DriverKey {
	keys := make([]schema.DriverKey, len(drivers))
	for i, d := range drivers {
		keys[i] = d.Key
	}
	return keys
}

func TestScoreEntity_BlockedNearTarget(t *testing.T) {
	e := schema.Entity{ID: "INIT-1", BlockedDurationDays: 4, DaysToTarget: 9}

	t.Run("penalty arithmetic without stable-scope bonus", func(t *testing.T) {
		rules := schema.DefaultRules()
		rules.ScopeStableBonus = 0
		got := ScoreEntity(e, rules)
		assert.Equal(t, 30.0, got.Breakdown.TotalPenalty)
		assert.Equal(t, 70.0, got.DCSCurrent)
		assert.Equal(t, schema.YellowBand, got.Band)
		assert.Equal(t, []schema.DriverKey{schema.DriverBlocked, schema.DriverDueDate}, driverKeys(got.Drivers))
		assert.Equal(t, -20.0, got.Drivers[0].Contribution)
		assert.Equal(t, -10.0, got.Drivers[1].Contribution)
	})

	t.Run("default rules grant stable-scope bonus", func(t *testing.T) {
		got := ScoreEntity(e, schema.DefaultRules())
		assert.Equal(t, 30.0, got.Breakdown.TotalPenalty)
		assert.Equal(t, 5.0, got.Breakdown.CappedBonus)
		assert.Equal(t, 75.0, got.DCSCurrent)
		assert.Equal(t, schema.GreenBand, got.Band)
		assert.Equal(t, []schema.DriverKey{schema.DriverBlocked, schema.DriverDueDate, schema.DriverScopeStable}, driverKeys(got.Drivers))
	})
}

func TestScoreEntity_CriticalDependency(t *testing.T) {
	rules := schema.DefaultRules()
	rules.ScopeStableBonus = 0
	e := schema.Entity{ID: "INIT-2", DependencyCount: 10, DependencyCritical: true, DaysToTarget: 30}

	got := ScoreEntity(e, rules)
	assert.Equal(t, 80.0, got.DCSCurrent)
	assert.Equal(t, schema.GreenBand, got.Band)
	require.NotEmpty(t, got.Drivers)
	assert.Equal(t, schema.DriverDependency, got.Drivers[0].Key)
	assert.Equal(t, -20.0, got.Drivers[0].Contribution, "cap of 15 plus critical surcharge of 5")
}

func TestScoreEntity_CapsAndClamp(t *testing.T) {
	rules := schema.DefaultRules()
	e := schema.Entity{
		ID:                   "WORST",
		BlockedDurationDays:  100,
		ScopeChangeEvents14d: 10,
		DaysStagnant:         50,
		DependencyCount:      100,
		DependencyCritical:   true,
		OwnerChanges30d:      10,
		DaysToTarget:         -5,
		MeaningfulProgress7d: true,
		TeamWIPUnderLimit:    true,
	}
	got := ScoreEntity(e, rules)

	assert.Equal(t, 25.0, got.Penalty(schema.DriverBlocked))
	assert.Equal(t, 20.0, got.Penalty(schema.DriverScope))
	assert.Equal(t, 20.0, got.Penalty(schema.DriverAging))
	assert.Equal(t, 20.0, got.Penalty(schema.DriverDependency))
	assert.Equal(t, 10.0, got.Penalty(schema.DriverOwner))
	assert.Equal(t, 15.0, got.Penalty(schema.DriverDueDate))
	assert.Equal(t, 110.0, got.Breakdown.TotalPenalty)
	assert.Equal(t, 10.0, got.Breakdown.CappedBonus)
	assert.Equal(t, 0.0, got.DCSCurrent)
	assert.Equal(t, schema.RedBand, got.Band)
}

func TestScoreEntity_BonusCap(t *testing.T) {
	e := schema.Entity{ID: "BEST", DaysToTarget: 30, MeaningfulProgress7d: true, TeamWIPUnderLimit: true}
	got := ScoreEntity(e, schema.DefaultRules())

	assert.Equal(t, 15.0, got.Breakdown.RawBonus)
	assert.Equal(t, 10.0, got.Breakdown.CappedBonus)
	assert.Equal(t, 100.0, got.DCSCurrent, "score is clamped at 100")
	assert.Equal(t, []schema.DriverKey{schema.DriverProgress, schema.DriverWIPLimit, schema.DriverScopeStable}, driverKeys(got.Drivers))

	var listed float64
	for _, d := range got.Drivers {
		listed += d.Contribution
	}
	assert.Equal(t, got.Breakdown.RawBonus, listed, "bonus drivers keep nominal amounts")
	assert.Greater(t, listed, got.Breakdown.CappedBonus)
}

func TestScoreEntity_DueDateTiers(t *testing.T) {
	rules := schema.DefaultRules()
	tests := []struct {
		name     string
		days     int
		nearDone bool
		expected float64
	}{
		{"overdue", -3, false, 15},
		{"seven days", 7, false, 15},
		{"eight days", 8, false, 10},
		{"fourteen days", 14, false, 10},
		{"fifteen days", 15, false, 0},
		{"near done inside a week", 3, true, 0},
		{"near done inside two weeks", 10, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreEntity(schema.Entity{ID: "X", DaysToTarget: tt.days, NearDone: tt.nearDone}, rules)
			assert.Equal(t, tt.expected, got.Penalty(schema.DriverDueDate))
		})
	}
}

func TestScoreEntity_FractionalDurations(t *testing.T) {
	rules := schema.DefaultRules()
	got := ScoreEntity(schema.Entity{ID: "F", BlockedDurationDays: 0.5, DaysStagnant: 1.5, DaysToTarget: 30, ScopeChangeEvents14d: 1}, rules)
	assert.Equal(t, 2.5, got.Penalty(schema.DriverBlocked))
	assert.Equal(t, 4.5, got.Penalty(schema.DriverAging))
	assert.Equal(t, 89.0, got.DCSCurrent)
}

func TestSortDrivers_TieBreakByPriority(t *testing.T) {
	rules := schema.DefaultRules()
	e := schema.Entity{ID: "T", BlockedDurationDays: 1, OwnerChanges30d: 1, MeaningfulProgress7d: true, DaysToTarget: 30}
	got := ScoreEntity(e, rules)
	assert.Equal(t, []schema.DriverKey{
		schema.DriverBlocked,
		schema.DriverOwner,
		schema.DriverProgress,
		schema.DriverScopeStable,
	}, driverKeys(got.Drivers))
}

func TestScoreEntity_NoDriversWhenNothingFires(t *testing.T) {
	e := schema.Entity{ID: "QUIET", DaysToTarget: 60, ScopeChangeEvents14d: 0}
	rules := schema.DefaultRules()
	rules.ScopeStableBonus = 0
	got := ScoreEntity(e, rules)
	assert.Empty(t, got.Drivers)
	assert.Equal(t, 100.0, got.DCSCurrent)
}

func TestScoreEntities_PreservesOrder(t *testing.T) {
	entities := []schema.Entity{{ID: "C"}, {ID: "A"}, {ID: "B"}}
	got := ScoreEntities(entities, schema.DefaultRules())
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].ID)
	assert.Equal(t, "A", got[1].ID)
	assert.Equal(t, "B", got[2].ID)
}

func TestScoreEntity_CustomThresholds(t *testing.T) {
	rules := schema.DefaultRules()
	rules.GreenThreshold = 90
	rules.YellowThreshold = 70
	got := ScoreEntity(schema.Entity{ID: "X", BlockedDurationDays: 4, DaysToTarget: 9}, rules)
	assert.Equal(t, 75.0, got.DCSCurrent)
	assert.Equal(t, schema.YellowBand, got.Band)
}
