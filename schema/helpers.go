package schema

import (
	"sort"
	"strconv"
	"strings"
)

// FormatScore renders a score with the shortest exact representation.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDelta renders a signed delta such as "+5", "-8" or "0".
func FormatDelta(v float64) string {
	if v > 0 {
		return "+" + FormatScore(v)
	}
	return FormatScore(v)
}

// TrendLabel renders the trend symbol with its signed delta, or "new" when
// the entity has no prior score.
func TrendLabel(e ScoredEntity) string {
	if !e.HasPrior() {
		return "new"
	}
	return string(e.Trend) + " " + FormatDelta(*e.Delta)
}

// FormatDrivers renders drivers as "key(+n)" pairs in their stored order.
func FormatDrivers(drivers []Driver) string {
	parts := make([]string, 0, len(drivers))
	for _, d := range drivers {
		parts = append(parts, string(d.Key)+"("+FormatDelta(d.Contribution)+")")
	}
	return strings.Join(parts, " ")
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
