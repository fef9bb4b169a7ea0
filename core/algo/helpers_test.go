package algo

import "github.com/deliverypulse/pulse/schema"

// scoredWith builds a scored entity with an optional delta. A nil delta
// means the entity has no prior.
func scoredWith(id string, dcs float64, band schema.Band, delta *float64) schema.ScoredEntity {
	e := schema.ScoredEntity{
		Entity:     schema.Entity{ID: id, Name: id + " name", DaysToTarget: 30},
		DCSCurrent: dcs,
		Band:       band,
	}
	if delta != nil {
		prior := dcs - *delta
		d := *delta
		e.DCSPrior = &prior
		e.Delta = &d
		switch {
		case d > 0:
			e.Trend = schema.TrendUp
		case d < 0:
			e.Trend = schema.TrendDown
		default:
			e.Trend = schema.TrendFlat
		}
	}
	return e
}

func ids(entities []schema.ScoredEntity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}
