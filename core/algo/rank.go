package algo

import (
	"slices"
	"sort"

	"github.com/deliverypulse/pulse/schema"
)

// DefaultRiskLimit is the number of top risks shown when no limit is given.
const DefaultRiskLimit = 3

// riskLess reports whether a ranks ahead of b as an emerging risk.
// Entities with a delta come first, most negative delta first. Entities
// without a prior follow in id order. Ties on delta go to the larger
// scope-plus-blocked penalty, then the nearer target, then the lower id.
func riskLess(a, b schema.ScoredEntity) bool {
	if a.HasPrior() != b.HasPrior() {
		return a.HasPrior()
	}
	if !a.HasPrior() {
		return a.ID < b.ID
	}
	if *a.Delta != *b.Delta {
		return *a.Delta < *b.Delta
	}
	pa := a.Penalty(schema.DriverScope) + a.Penalty(schema.DriverBlocked)
	pb := b.Penalty(schema.DriverScope) + b.Penalty(schema.DriverBlocked)
	if pa != pb {
		return pa > pb
	}
	if a.DaysToTarget != b.DaysToTarget {
		return a.DaysToTarget < b.DaysToTarget
	}
	return a.ID < b.ID
}

// RankRisks returns the top 'limit' emerging risks plus every Red entity
// beyond that limit, without duplicates and in rank order. The input slice
// is not modified.
func RankRisks(entities []schema.ScoredEntity, limit int) []schema.ScoredEntity {
	if limit < 0 {
		limit = 0
	}
	ranked := slices.Clone(entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return riskLess(ranked[i], ranked[j])
	})

	out := make([]schema.ScoredEntity, 0, min(len(ranked), limit))
	for i, e := range ranked {
		if i < limit || e.Band == schema.RedBand {
			out = append(out, e)
		}
	}
	return out
}

// BuildRiskList ranks risks and attaches a decision prompt to each.
func BuildRiskList(entities []schema.ScoredEntity, limit int) []schema.RankedRisk {
	ranked := RankRisks(entities, limit)
	out := make([]schema.RankedRisk, len(ranked))
	for i, e := range ranked {
		out[i] = schema.RankedRisk{
			Rank:           i + 1,
			Entity:         e,
			DecisionPrompt: DecisionPrompt(e),
		}
	}
	return out
}

// RankPositives returns up to 'limit' entities whose trend is upward,
// largest delta first, then higher current score, then lower id.
func RankPositives(entities []schema.ScoredEntity, limit int) []schema.ScoredEntity {
	var positives []schema.ScoredEntity
	for _, e := range entities {
		if e.HasPrior() && e.Trend == schema.TrendUp {
			positives = append(positives, e)
		}
	}
	sort.SliceStable(positives, func(i, j int) bool {
		a, b := positives[i], positives[j]
		if *a.Delta != *b.Delta {
			return *a.Delta > *b.Delta
		}
		if a.DCSCurrent != b.DCSCurrent {
			return a.DCSCurrent > b.DCSCurrent
		}
		return a.ID < b.ID
	})
	if len(positives) > limit {
		return positives[:max(limit, 0)]
	}
	return positives
}
