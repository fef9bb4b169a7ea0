package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// risksCmd ranks emerging risks.
var risksCmd = &cobra.Command{
	Use:   "risks [snapshot]",
	Short: "Rank emerging delivery risks.",
	Long: `Rank initiatives by how quickly their confidence is falling.

The sharpest declines come first, then initiatives without history. Every
Red initiative is listed even beyond --limit. Each risk carries a decision
prompt for leadership.

Examples:
  # Top five risks
  pulse risks snapshot.csv --limit 5

  # Export for a tracker
  pulse risks snapshot.csv --output csv --output-file risks.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot rank risks", core.ExecuteRisks)
	},
}
