package schema

import "fmt"

// Rules holds every numeric constant of the Delivery Confidence Score.
// Penalties are per-unit weights with an independent cap per category.
type Rules struct {
	BaseScore float64 `json:"base_score" yaml:"base_score"`

	BlockedPerDay float64 `json:"blocked_per_day" yaml:"blocked_per_day"`
	BlockedCap    float64 `json:"blocked_cap" yaml:"blocked_cap"`

	ScopePerEvent float64 `json:"scope_per_event" yaml:"scope_per_event"`
	ScopeCap      float64 `json:"scope_cap" yaml:"scope_cap"`

	AgingPerDay float64 `json:"aging_per_day" yaml:"aging_per_day"`
	AgingCap    float64 `json:"aging_cap" yaml:"aging_cap"`

	DependencyPerItem  float64 `json:"dependency_per_item" yaml:"dependency_per_item"`
	DependencyCap      float64 `json:"dependency_cap" yaml:"dependency_cap"`
	CriticalDependency float64 `json:"critical_dependency" yaml:"critical_dependency"` // added after the cap

	OwnerPerChange float64 `json:"owner_per_change" yaml:"owner_per_change"`
	OwnerCap       float64 `json:"owner_cap" yaml:"owner_cap"`

	DueNearDays    int     `json:"due_near_days" yaml:"due_near_days"`
	DueNearPenalty float64 `json:"due_near_penalty" yaml:"due_near_penalty"`
	DueSoonDays    int     `json:"due_soon_days" yaml:"due_soon_days"`
	DueSoonPenalty float64 `json:"due_soon_penalty" yaml:"due_soon_penalty"`

	ProgressBonus    float64 `json:"progress_bonus" yaml:"progress_bonus"`
	WIPLimitBonus    float64 `json:"wip_limit_bonus" yaml:"wip_limit_bonus"`
	ScopeStableBonus float64 `json:"scope_stable_bonus" yaml:"scope_stable_bonus"`
	BonusCap         float64 `json:"bonus_cap" yaml:"bonus_cap"`

	// Band thresholds are inclusive on the higher band.
	GreenThreshold  float64 `json:"green_threshold" yaml:"green_threshold"`
	YellowThreshold float64 `json:"yellow_threshold" yaml:"yellow_threshold"`

	// TrendDeadZone treats |delta| <= TrendDeadZone as flat.
	TrendDeadZone float64 `json:"trend_dead_zone" yaml:"trend_dead_zone"`

	// NearDoneThreshold is the completed fraction at which remaining work
	// is considered minimal when no explicit near_done value is given.
	NearDoneThreshold float64 `json:"near_done_threshold" yaml:"near_done_threshold"`
}

// DefaultRules returns the standard scoring rules.
func DefaultRules() Rules {
	return Rules{
		BaseScore:          100,
		BlockedPerDay:      5,
		BlockedCap:         25,
		ScopePerEvent:      4,
		ScopeCap:           20,
		AgingPerDay:        3,
		AgingCap:           20,
		DependencyPerItem:  3,
		DependencyCap:      15,
		CriticalDependency: 5,
		OwnerPerChange:     5,
		OwnerCap:           10,
		DueNearDays:        7,
		DueNearPenalty:     15,
		DueSoonDays:        14,
		DueSoonPenalty:     10,
		ProgressBonus:      5,
		WIPLimitBonus:      5,
		ScopeStableBonus:   5,
		BonusCap:           10,
		GreenThreshold:     75,
		YellowThreshold:    50,
		TrendDeadZone:      0,
		NearDoneThreshold:  0.8,
	}
}

// BandFor maps a DCS value to its confidence band.
func (r Rules) BandFor(score float64) Band {
	switch {
	case score >= r.GreenThreshold:
		return GreenBand
	case score >= r.YellowThreshold:
		return YellowBand
	default:
		return RedBand
	}
}

// PenaltyCap returns the largest contribution a penalty category can reach.
func (r Rules) PenaltyCap(key DriverKey) float64 {
	switch key {
	case DriverBlocked:
		return r.BlockedCap
	case DriverScope:
		return r.ScopeCap
	case DriverAging:
		return r.AgingCap
	case DriverDependency:
		return r.DependencyCap + r.CriticalDependency
	case DriverOwner:
		return r.OwnerCap
	case DriverDueDate:
		return max(r.DueNearPenalty, r.DueSoonPenalty)
	default:
		return 0
	}
}

// Validate checks that the rules are internally consistent.
func (r Rules) Validate() error {
	nonNegative := map[string]float64{
		"base_score":          r.BaseScore,
		"blocked_per_day":     r.BlockedPerDay,
		"blocked_cap":         r.BlockedCap,
		"scope_per_event":     r.ScopePerEvent,
		"scope_cap":           r.ScopeCap,
		"aging_per_day":       r.AgingPerDay,
		"aging_cap":           r.AgingCap,
		"dependency_per_item": r.DependencyPerItem,
		"dependency_cap":      r.DependencyCap,
		"critical_dependency": r.CriticalDependency,
		"owner_per_change":    r.OwnerPerChange,
		"owner_cap":           r.OwnerCap,
		"due_near_penalty":    r.DueNearPenalty,
		"due_soon_penalty":    r.DueSoonPenalty,
		"progress_bonus":      r.ProgressBonus,
		"wip_limit_bonus":     r.WIPLimitBonus,
		"scope_stable_bonus":  r.ScopeStableBonus,
		"bonus_cap":           r.BonusCap,
		"trend_dead_zone":     r.TrendDeadZone,
	}
	for _, name := range sortedKeys(nonNegative) {
		if nonNegative[name] < 0 {
			return fmt.Errorf("rule %s must not be negative (received %g)", name, nonNegative[name])
		}
	}
	if r.BaseScore > 100 {
		return fmt.Errorf("rule base_score cannot exceed 100 (received %g)", r.BaseScore)
	}
	if r.DueNearDays > r.DueSoonDays {
		return fmt.Errorf("rule due_near_days (%d) cannot exceed due_soon_days (%d)", r.DueNearDays, r.DueSoonDays)
	}
	if r.YellowThreshold < 0 || r.GreenThreshold > 100 || r.YellowThreshold > r.GreenThreshold {
		return fmt.Errorf("band thresholds must satisfy 0 <= yellow <= green <= 100 (received yellow=%g green=%g)", r.YellowThreshold, r.GreenThreshold)
	}
	if r.NearDoneThreshold <= 0 || r.NearDoneThreshold > 1 {
		return fmt.Errorf("rule near_done_threshold must be in (0, 1] (received %g)", r.NearDoneThreshold)
	}
	return nil
}
