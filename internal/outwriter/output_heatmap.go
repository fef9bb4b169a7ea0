package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/deliverypulse/pulse/internal/brief"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/parquet"
	"github.com/deliverypulse/pulse/schema"
	"github.com/gocarina/gocsv"
)

// renderHeatmap dispatches on the configured output format.
func renderHeatmap(w io.Writer, h schema.Heatmap, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, h)
	case schema.YAMLOut:
		return writeYAML(w, h)
	case schema.CSVOut:
		// gocsv writes the header from the csv struct tags.
		if err := gocsv.Marshal(h.Rows, w); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	case schema.ParquetOut:
		return parquet.WriteRows(w, parquet.ConvertHeatmap(h))
	case schema.MarkdownOut:
		text, err := brief.RenderHeatmap(h)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	default:
		return writeHeatmapTable(w, h, cfg)
	}
}

// writeHeatmapTable prints one row per entity and a totals row.
func writeHeatmapTable(w io.Writer, h schema.Heatmap, cfg *contract.Config) error {
	headers := []string{"Initiative", "Band"}
	for _, col := range h.Totals {
		headers = append(headers, col.Label)
	}

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(h.Rows)+1)
	for _, r := range h.Rows {
		row := []string{contract.TruncateName(r.Name, nameWidth), contract.GetBandLabel(r.Band, cfg.UseColors)}
		for _, v := range r.Values() {
			row = append(row, strconv.Itoa(v))
		}
		data = append(data, row)
	}
	totals := []string{"Total", ""}
	for _, col := range h.Totals {
		totals = append(totals, strconv.Itoa(col.Total))
	}
	data = append(data, totals)

	if err := writeTable(w, headers, data, false); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Week ending %s. Scores are normalized 0-10 per driver (10 = highest risk intensity).\n", h.WeekEnding)
	return err
}
