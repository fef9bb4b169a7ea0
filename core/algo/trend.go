package algo

import (
	"math"

	"github.com/deliverypulse/pulse/schema"
)

// ComputeTrend returns the delta and direction for a current score against a
// prior one. A nil prior yields a nil delta and an empty trend, which is
// distinct from a zero delta.
func ComputeTrend(current float64, prior *float64, deadZone float64) (*float64, schema.Trend) {
	if prior == nil {
		return nil, ""
	}
	delta := current - *prior
	switch {
	case math.Abs(delta) <= deadZone:
		return &delta, schema.TrendFlat
	case delta > 0:
		return &delta, schema.TrendUp
	default:
		return &delta, schema.TrendDown
	}
}

// ApplyTrends resolves the prior score of every entity and fills in its delta
// and trend. When a prior snapshot is given it is authoritative and matched
// by id; otherwise an inline prior score on the input row is used.
//
// Entities that claim history but have no match in the prior snapshot are
// reported as ReferenceErrors and treated as new. The returned errors are
// warnings; scoring never fails here.
func ApplyTrends(scored []schema.ScoredEntity, prior *schema.Snapshot, rules schema.Rules) []error {
	var warnings []error

	var priorByID map[string]float64
	if prior != nil {
		priorByID = make(map[string]float64, len(prior.Entities))
		for _, p := range prior.Entities {
			priorByID[p.ID] = p.DCSCurrent
		}
	}

	for i := range scored {
		e := &scored[i]
		var priorScore *float64

		switch {
		case prior != nil:
			if v, ok := priorByID[e.ID]; ok {
				priorScore = &v
			} else if e.ClaimsHistory {
				warnings = append(warnings, &schema.ReferenceError{ID: e.ID})
			}
		case e.InlinePrior != nil:
			v := *e.InlinePrior
			priorScore = &v
		}

		e.DCSPrior = priorScore
		e.Delta, e.Trend = ComputeTrend(e.DCSCurrent, priorScore, rules.TrendDeadZone)
	}

	return warnings
}
