package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/parquet"
	"github.com/deliverypulse/pulse/schema"
)

// scoredReport is the JSON and YAML layout of a scored snapshot. It is also
// readable as a prior snapshot on the following week.
type scoredReport struct {
	WeekEnding string                  `json:"week_ending" yaml:"week_ending"`
	Summary    schema.PortfolioSummary `json:"summary" yaml:"summary"`
	Entities   []schema.ScoredEntity   `json:"entities" yaml:"entities"`
}

// scoreCSVHeader lists the flat CSV columns of a scored entity.
var scoreCSVHeader = []string{
	"id",
	"name",
	"level",
	"status",
	"dcs_current",
	"dcs_prior",
	"delta",
	"band",
	"trend_symbol",
	"drivers",
	"blocked_duration_days",
	"scope_change_events_14d",
	"days_stagnant",
	"dependency_count",
	"dependency_critical",
	"owner_changes_30d",
	"days_to_target",
	"status_notes",
}

// renderScores dispatches on the configured output format.
func renderScores(w io.Writer, snap schema.Snapshot, summary schema.PortfolioSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, scoredReport{WeekEnding: snap.WeekEnding, Summary: summary, Entities: snap.Entities})
	case schema.YAMLOut:
		return writeYAML(w, scoredReport{WeekEnding: snap.WeekEnding, Summary: summary, Entities: snap.Entities})
	case schema.CSVOut:
		return writeScoresCSV(w, snap)
	case schema.ParquetOut:
		return parquet.WriteRows(w, parquet.ConvertSnapshot(snap))
	case schema.MarkdownOut:
		return writeScoresTable(w, snap, summary, cfg, fmtFloat, intFmt, true)
	default:
		return writeScoresTable(w, snap, summary, cfg, fmtFloat, intFmt, false)
	}
}

// writeScoresTable generates the human-readable table followed by a
// one-line portfolio summary.
func writeScoresTable(w io.Writer, snap schema.Snapshot, summary schema.PortfolioSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, markdown bool) error {
	useColors := cfg.UseColors && !markdown

	headers := []string{"ID", "Name", "DCS", "Band", "Trend"}
	if cfg.Detail {
		headers = append(headers, "Blocked", "Scope", "Stagnant", "Deps", "Owners", "Target")
	}
	if cfg.Explain {
		headers = append(headers, "Drivers")
	}

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, e := range snap.Entities {
		name := e.Name
		if !markdown {
			name = contract.TruncateName(name, nameWidth)
		}
		row := []string{
			e.ID,
			name,
			fmtFloat(e.DCSCurrent),
			contract.GetBandLabel(e.Band, useColors),
			contract.GetTrendLabel(e, useColors),
		}
		if cfg.Detail {
			deps := fmt.Sprintf(intFmt, e.DependencyCount)
			if e.DependencyCritical {
				deps += "!"
			}
			row = append(row,
				fmtFloat(e.BlockedDurationDays),
				fmt.Sprintf(intFmt, e.ScopeChangeEvents14d),
				fmtFloat(e.DaysStagnant),
				deps,
				fmt.Sprintf(intFmt, e.OwnerChanges30d),
				fmt.Sprintf(intFmt, e.DaysToTarget)+"d",
			)
		}
		if cfg.Explain {
			row = append(row, schema.FormatDrivers(e.Drivers))
		}
		data = append(data, row)
	}

	if err := writeTable(w, headers, data, markdown); err != nil {
		return err
	}
	if markdown {
		_, _ = fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "Week ending %s: %d entities (Green %d / Yellow %d / Red %d), average DCS %s\n",
		snap.WeekEnding, summary.Total, summary.Bands.Green, summary.Bands.Yellow, summary.Bands.Red, fmtFloat(summary.AverageDCS))
	return err
}

// writeScoresCSV writes one flat record per entity in input order.
func writeScoresCSV(w io.Writer, snap schema.Snapshot) error {
	return writeCSVWithHeader(w, scoreCSVHeader, func(cw *csv.Writer) error {
		for _, e := range snap.Entities {
			rec := []string{
				e.ID,
				e.Name,
				e.Level,
				string(e.Status),
				schema.FormatScore(e.DCSCurrent),
				fmtOptional(e.DCSPrior, schema.FormatScore),
				fmtOptional(e.Delta, schema.FormatScore),
				string(e.Band),
				string(e.Trend),
				schema.FormatDrivers(e.Drivers),
				schema.FormatScore(e.BlockedDurationDays),
				strconv.Itoa(e.ScopeChangeEvents14d),
				schema.FormatScore(e.DaysStagnant),
				strconv.Itoa(e.DependencyCount),
				strconv.FormatBool(e.DependencyCritical),
				strconv.Itoa(e.OwnerChanges30d),
				strconv.Itoa(e.DaysToTarget),
				e.StatusNotes,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
