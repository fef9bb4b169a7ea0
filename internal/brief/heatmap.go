package brief

import (
	"bytes"
	"slices"
	"sort"
	"text/template"

	"github.com/deliverypulse/pulse/schema"
)

// SectionHeatmap names the heatmap summary for RenderError.
const SectionHeatmap = "Portfolio Heatmap Summary"

const heatmapWorstRows = 3

var heatmapTmpl = template.Must(template.New(SectionHeatmap).Parse(
	`# Portfolio Heatmap Summary — Week Ending {{.WeekEnding}}

## Highest Portfolio Risk Drivers (aggregate intensity)
{{- range .Totals}}
- **{{.Label}}**: {{.Total}}
{{- end}}

## Top 3 Initiatives by Combined Risk (from heatmap)
{{- range .Worst}}
- **{{.Name}}** | Confidence {{.ConfidenceRisk}} | Due {{.DueProximity}} | Blocked {{.Blocked}} | Scope {{.ScopeVolatility}} | Deps {{.Dependencies}} | Stagnation {{.Stagnation}}
{{- end}}

> Scores are normalized 0–10 per driver (10 = highest risk intensity).
`))

// RenderHeatmap produces the Markdown summary of a heatmap: column totals
// largest first and the worst rows. Rows are expected worst first.
func RenderHeatmap(h schema.Heatmap) (string, error) {
	totals := slices.Clone(h.Totals)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})

	data := struct {
		WeekEnding string
		Totals     []schema.HeatmapColumn
		Worst      []schema.HeatmapRow
	}{
		WeekEnding: h.WeekEnding,
		Totals:     totals,
		Worst:      h.Rows[:min(len(h.Rows), heatmapWorstRows)],
	}

	var buf bytes.Buffer
	if err := heatmapTmpl.Execute(&buf, data); err != nil {
		return "", &schema.RenderError{Section: SectionHeatmap, Err: err}
	}
	return buf.String(), nil
}

// rankIntensities orders driver intensities strongest first, keeping the
// category order for ties.
func rankIntensities(in []schema.DriverIntensity) []schema.DriverIntensity {
	out := slices.Clone(in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Intensity > out[j].Intensity
	})
	return out
}
