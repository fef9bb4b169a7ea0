package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

type rowsReport struct {
	WeekEnding string              `json:"week_ending" yaml:"week_ending"`
	Rows       []map[string]string `json:"rows" yaml:"rows"`
}

// renderRows writes canonical rows as CSV in field order, or as JSON/YAML
// that the json input format reads back.
func renderRows(w io.Writer, weekEnding string, fields []string, rows []map[string]string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, rowsReport{WeekEnding: weekEnding, Rows: rows})
	case schema.YAMLOut:
		return writeYAML(w, rowsReport{WeekEnding: weekEnding, Rows: rows})
	case schema.TextOut, schema.CSVOut:
		return writeCSVWithHeader(w, fields, func(cw *csv.Writer) error {
			for _, row := range rows {
				rec := make([]string, len(fields))
				for i, f := range fields {
					rec[i] = row[f]
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			return nil
		})
	default:
		return fmt.Errorf("output format %s is not supported for rows", cfg.Output)
	}
}
