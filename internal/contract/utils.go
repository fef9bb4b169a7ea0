package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deliverypulse/pulse/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	GreenColor  = color.New(color.FgGreen)           // GreenColor marks confident entities.
	YellowColor = color.New(color.FgYellow)          // YellowColor marks entities needing attention.
	RedColor    = color.New(color.FgRed, color.Bold) // RedColor marks entities at risk.
	UpColor     = color.New(color.FgGreen)           // UpColor marks improving trends.
	DownColor   = color.New(color.FgRed)             // DownColor marks declining trends.
	MutedColor  = color.New(color.FgHiBlack)         // MutedColor marks entities without history.
)

// GetBandLabel returns the band name, colored for console output when
// useColors is set.
func GetBandLabel(band schema.Band, useColors bool) string {
	text := string(band)
	if !useColors {
		return text
	}
	switch band {
	case schema.GreenBand:
		return GreenColor.Sprint(text)
	case schema.YellowBand:
		return YellowColor.Sprint(text)
	case schema.RedBand:
		return RedColor.Sprint(text)
	default:
		return text
	}
}

// GetTrendLabel returns the trend symbol with its delta, colored by
// direction when useColors is set.
func GetTrendLabel(e schema.ScoredEntity, useColors bool) string {
	text := schema.TrendLabel(e)
	if !useColors {
		return text
	}
	switch {
	case !e.HasPrior():
		return MutedColor.Sprint(text)
	case e.Trend == schema.TrendUp:
		return UpColor.Sprint(text)
	case e.Trend == schema.TrendDown:
		return DownColor.Sprint(text)
	default:
		return text
	}
}

// TruncateName shortens a display name to maxWidth runes with a trailing
// ellipsis. Requires maxWidth > 3 so at least one character survives.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulse_history.db"
	}
	return filepath.Join(homeDir, ".pulse_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
