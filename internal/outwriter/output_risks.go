package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

type riskReport struct {
	WeekEnding string              `json:"week_ending" yaml:"week_ending"`
	Risks      []schema.RankedRisk `json:"risks" yaml:"risks"`
}

// renderRisks dispatches on the configured output format.
func renderRisks(w io.Writer, weekEnding string, risks []schema.RankedRisk, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, riskReport{WeekEnding: weekEnding, Risks: risks})
	case schema.YAMLOut:
		return writeYAML(w, riskReport{WeekEnding: weekEnding, Risks: risks})
	case schema.CSVOut:
		return writeRisksCSV(w, risks)
	case schema.ParquetOut:
		return fmt.Errorf("output format %s is not supported for risks", cfg.Output)
	case schema.MarkdownOut:
		return writeRisksTable(w, risks, cfg, fmtFloat, intFmt, true)
	default:
		return writeRisksTable(w, risks, cfg, fmtFloat, intFmt, false)
	}
}

// writeRisksTable generates the human-readable risk table.
func writeRisksTable(w io.Writer, risks []schema.RankedRisk, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, markdown bool) error {
	useColors := cfg.UseColors && !markdown
	headers := []string{"Rank", "ID", "Name", "DCS", "Band", "Trend", "Target", "Decision Prompt"}
	if cfg.Explain {
		headers = append(headers, "Drivers")
	}

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range risks {
		e := r.Entity
		name := e.Name
		if !markdown {
			name = contract.TruncateName(name, nameWidth)
		}
		row := []string{
			strconv.Itoa(r.Rank),
			e.ID,
			name,
			fmtFloat(e.DCSCurrent),
			contract.GetBandLabel(e.Band, useColors),
			contract.GetTrendLabel(e, useColors),
			fmt.Sprintf(intFmt, e.DaysToTarget) + "d",
			r.DecisionPrompt,
		}
		if cfg.Explain {
			row = append(row, schema.FormatDrivers(e.Drivers))
		}
		data = append(data, row)
	}
	if err := writeTable(w, headers, data, markdown); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d emerging risks\n", len(risks))
	return err
}

func writeRisksCSV(w io.Writer, risks []schema.RankedRisk) error {
	header := []string{"rank", "id", "name", "dcs_current", "delta", "band", "trend_symbol", "days_to_target", "decision_prompt", "drivers"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range risks {
			e := r.Entity
			rec := []string{
				strconv.Itoa(r.Rank),
				e.ID,
				e.Name,
				schema.FormatScore(e.DCSCurrent),
				fmtOptional(e.Delta, schema.FormatScore),
				string(e.Band),
				string(e.Trend),
				strconv.Itoa(e.DaysToTarget),
				r.DecisionPrompt,
				schema.FormatDrivers(e.Drivers),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
