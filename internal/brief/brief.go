// Package brief renders scored portfolio data into the weekly executive
// brief and the heatmap summary. It holds no scoring logic.
package brief

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/deliverypulse/pulse/schema"
)

// Section names, in document order.
const (
	SectionHeader    = "Header"
	SectionSnapshot  = "Portfolio Snapshot"
	SectionRisks     = "Top Emerging Risks (Decision-Oriented)"
	SectionPositives = "Notable Positive Momentum"
	SectionPrompts   = "Decision Prompts Summary"
	SectionNote      = "Note"
)

// NoPositiveMomentum is printed when no entity improved this week.
const NoPositiveMomentum = "- No significant positive movement this week; focus on stabilizing top risks."

// Disclaimer closes every brief.
const Disclaimer = "> Note: This brief is derived from scored operational signals. Root-cause validation may require qualitative follow-up with owners."

// Thresholds for naming a signal as a risk driver.
const (
	driverBlockedDays  = 2.0
	driverScopeChanges = 2
	driverStagnantDays = 4.0
	driverDependencies = 4
	maxTopDrivers      = 3
)

// Input is everything the brief needs, already scored and ranked.
type Input struct {
	Summary   schema.PortfolioSummary
	Risks     []schema.RankedRisk
	Positives []schema.ScoredEntity
}

type section struct {
	name string
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"score":   schema.FormatScore,
	"trend":   schema.TrendLabel,
	"mover":   moverLabel,
	"average": averageLabel,
	"drivers": RiskDrivers,
	"context": FirstNote,
	"top":     topDrivers,
}

var sections = []section{
	{SectionHeader, template.Must(template.New(SectionHeader).Funcs(funcs).Parse(
		`# Weekly Executive Brief — Week Ending {{.Summary.WeekEnding}}
`))},
	{SectionSnapshot, template.Must(template.New(SectionSnapshot).Funcs(funcs).Parse(
		`## Portfolio Snapshot
- Total initiatives: **{{.Summary.Total}}**
- Confidence bands: **Green {{.Summary.Bands.Green}}** / **Yellow {{.Summary.Bands.Yellow}}** / **Red {{.Summary.Bands.Red}}**
- Average confidence: {{average .Summary}}
- Largest decline: {{mover .Summary.LargestDecline}}
- Largest improvement: {{mover .Summary.LargestImprovement}}
- Top risk drivers: {{top .Summary.DriverIntensity}}
`))},
	{SectionRisks, template.Must(template.New(SectionRisks).Funcs(funcs).Parse(
		`## Top Emerging Risks (Decision-Oriented)
{{- range .Risks}}
- **{{.Entity.Name}}** — {{.Entity.Band}} (**{{score .Entity.DCSCurrent}} {{trend .Entity}}**) | Drivers: {{drivers .Entity}} | Target: {{.Entity.DaysToTarget}}d
  - Decision prompt: *{{.DecisionPrompt}}*
{{- with context .Entity}}
  - Context: {{.}}
{{- end}}
{{- else}}
- No entities currently rank as emerging risks.
{{- end}}
`))},
	{SectionPositives, template.Must(template.New(SectionPositives).Funcs(funcs).Parse(
		`## Notable Positive Momentum
{{- range .Positives}}
- **{{.Name}}** — {{.Band}} (**{{score .DCSCurrent}} {{trend .}}**) | Target: {{.DaysToTarget}}d
{{- else}}
` + NoPositiveMomentum + `
{{- end}}
`))},
	{SectionPrompts, template.Must(template.New(SectionPrompts).Parse(
		`## Decision Prompts Summary
- Scope: Where volatility is increasing, decide whether to freeze scope or re-baseline commitments.
- Dependencies: For critical path dependencies, align sequencing and escalation paths explicitly.
- Capacity: For near-term targets with declining confidence, choose: add capacity vs reduce surface area vs accept slip.
`))},
	{SectionNote, template.Must(template.New(SectionNote).Parse(Disclaimer + "\n"))},
}

// Render produces the brief as Markdown. Sections are separated by one
// blank line. Any failure is a RenderError naming the section.
func Render(in Input) (string, error) {
	if in.Summary.WeekEnding == "" {
		return "", &schema.RenderError{Section: SectionHeader, Err: errors.New("week ending is missing")}
	}
	if in.Summary.Total != in.Summary.Bands.Green+in.Summary.Bands.Yellow+in.Summary.Bands.Red {
		return "", &schema.RenderError{Section: SectionSnapshot, Err: fmt.Errorf("band counts do not add up to %d entities", in.Summary.Total)}
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		var buf bytes.Buffer
		if err := s.tmpl.Execute(&buf, in); err != nil {
			return "", &schema.RenderError{Section: s.name, Err: err}
		}
		parts = append(parts, buf.String())
	}
	return strings.Join(parts, "\n"), nil
}

// RiskDrivers names the signals behind a risk in plain words.
func RiskDrivers(e schema.ScoredEntity) string {
	var drivers []string
	if e.BlockedDurationDays >= driverBlockedDays {
		drivers = append(drivers, fmt.Sprintf("blocked %sd", schema.FormatScore(e.BlockedDurationDays)))
	}
	if e.ScopeChangeEvents14d >= driverScopeChanges {
		drivers = append(drivers, fmt.Sprintf("scope changes %d/14d", e.ScopeChangeEvents14d))
	}
	if e.DaysStagnant >= driverStagnantDays {
		drivers = append(drivers, fmt.Sprintf("stagnant %sd", schema.FormatScore(e.DaysStagnant)))
	}
	if e.DependencyCount >= driverDependencies || e.DependencyCritical {
		d := fmt.Sprintf("deps %d", e.DependencyCount)
		if e.DependencyCritical {
			d += " (critical)"
		}
		drivers = append(drivers, d)
	}
	if len(drivers) == 0 {
		return "signal review needed"
	}
	return strings.Join(drivers, ", ")
}

// FirstNote returns the first "; "-separated status note, or "".
func FirstNote(e schema.ScoredEntity) string {
	first, _, _ := strings.Cut(e.StatusNotes, "; ")
	return strings.TrimSpace(first)
}

// averageLabel prints mean and median confidence. An empty portfolio has
// neither.
func averageLabel(s schema.PortfolioSummary) string {
	if s.Total == 0 {
		return "n/a (no initiatives)"
	}
	return fmt.Sprintf("**%s** (median **%s**)", schema.FormatScore(s.AverageDCS), schema.FormatScore(s.MedianDCS))
}

func moverLabel(m *schema.Mover) string {
	if m == nil {
		return "n/a (no prior week data)"
	}
	return fmt.Sprintf("**%s** (%s, %s %s %s)", m.Name, m.Band, schema.FormatScore(m.DCSCurrent), m.Trend, schema.FormatDelta(m.Delta))
}

// topDrivers lists the strongest non-zero driver intensities.
func topDrivers(intensities []schema.DriverIntensity) string {
	ranked := rankIntensities(intensities)
	var parts []string
	for _, d := range ranked {
		if d.Intensity == 0 || len(parts) == maxTopDrivers {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d/10)", d.Label, d.Intensity))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
