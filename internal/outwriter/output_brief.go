package outwriter

import (
	"io"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

type briefReport struct {
	WeekEnding string `json:"week_ending" yaml:"week_ending"`
	Brief      string `json:"brief" yaml:"brief"`
}

func renderBrief(w io.Writer, weekEnding, text string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, briefReport{WeekEnding: weekEnding, Brief: text})
	case schema.YAMLOut:
		return writeYAML(w, briefReport{WeekEnding: weekEnding, Brief: text})
	default:
		_, err := io.WriteString(w, text)
		return err
	}
}
