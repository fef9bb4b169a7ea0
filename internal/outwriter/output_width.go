package outwriter

import (
	"os"

	"github.com/deliverypulse/pulse/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for entity names in
// table output based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + DCS + Band + Trend with borders/padding
	baseWidth := 40

	if cfg.Detail {
		baseWidth += 50 // Blocked, Scope, Stagnant, Deps, Owners, Target
	}
	if cfg.Explain {
		baseWidth += 40 // Drivers
	}

	// Table borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
