package algo

import (
	"math"

	"github.com/deliverypulse/pulse/schema"
	"github.com/montanaflynn/stats"
)

// Summarize builds the portfolio summary for a scored snapshot.
func Summarize(snap schema.Snapshot) schema.PortfolioSummary {
	summary := schema.PortfolioSummary{
		WeekEnding:      snap.WeekEnding,
		Total:           len(snap.Entities),
		Bands:           CountBands(snap.Entities),
		DriverIntensity: DriverIntensities(snap.Entities),
	}

	if len(snap.Entities) > 0 {
		scores := make(stats.Float64Data, len(snap.Entities))
		for i, e := range snap.Entities {
			scores[i] = e.DCSCurrent
		}
		// Mean and Median only fail on empty input.
		mean, _ := scores.Mean()
		median, _ := scores.Median()
		summary.AverageDCS = roundTo(mean, 2)
		summary.MedianDCS = roundTo(median, 2)
	}

	summary.LargestDecline = LargestDecline(snap.Entities)
	summary.LargestImprovement = LargestImprovement(snap.Entities)
	return summary
}

// CountBands counts entities per confidence band.
func CountBands(entities []schema.ScoredEntity) schema.BandCounts {
	var counts schema.BandCounts
	for _, e := range entities {
		switch e.Band {
		case schema.GreenBand:
			counts.Green++
		case schema.YellowBand:
			counts.Yellow++
		case schema.RedBand:
			counts.Red++
		}
	}
	return counts
}

// LargestDecline returns the entity with the minimum delta among entities
// with a prior score, or nil when none has one. Ties go to the lower
// current score, then to the lower id.
func LargestDecline(entities []schema.ScoredEntity) *schema.Mover {
	return pickMover(entities, func(a, b float64) bool { return a < b })
}

// LargestImprovement returns the entity with the maximum delta, using the
// same tie-break policy as LargestDecline.
func LargestImprovement(entities []schema.ScoredEntity) *schema.Mover {
	return pickMover(entities, func(a, b float64) bool { return a > b })
}

// pickMover selects the extreme entity by delta where better(a, b) reports
// whether delta a should win over delta b.
func pickMover(entities []schema.ScoredEntity, better func(a, b float64) bool) *schema.Mover {
	var best *schema.ScoredEntity
	for i := range entities {
		e := &entities[i]
		if !e.HasPrior() {
			continue
		}
		if best == nil {
			best = e
			continue
		}
		d, bd := *e.Delta, *best.Delta
		switch {
		case better(d, bd):
			best = e
		case d == bd && e.DCSCurrent < best.DCSCurrent:
			best = e
		case d == bd && e.DCSCurrent == best.DCSCurrent && e.ID < best.ID:
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return &schema.Mover{
		ID:         best.ID,
		Name:       best.Name,
		Band:       best.Band,
		DCSCurrent: best.DCSCurrent,
		Delta:      *best.Delta,
		Trend:      best.Trend,
	}
}

// DriverIntensities sums each penalty category across the portfolio and
// scales the sums to 0-10, where the largest category sum is 10. All
// intensities are 0 when no penalty fired anywhere.
func DriverIntensities(entities []schema.ScoredEntity) []schema.DriverIntensity {
	sums := make(map[schema.DriverKey]float64, len(schema.PenaltyDrivers))
	for _, e := range entities {
		for _, key := range schema.PenaltyDrivers {
			sums[key] += e.Penalty(key)
		}
	}

	var maxSum float64
	for _, v := range sums {
		maxSum = math.Max(maxSum, v)
	}

	out := make([]schema.DriverIntensity, 0, len(schema.PenaltyDrivers))
	for _, key := range schema.PenaltyDrivers {
		intensity := 0
		if maxSum > 0 {
			intensity = int(math.Round(sums[key] / maxSum * 10))
		}
		out = append(out, schema.DriverIntensity{
			Key:       key,
			Label:     schema.DriverLabels[key],
			RawSum:    sums[key],
			Intensity: intensity,
		})
	}
	return out
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
