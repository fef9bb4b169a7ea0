package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// briefCmd renders the executive brief.
var briefCmd = &cobra.Command{
	Use:   "brief [snapshot]",
	Short: "Render the weekly executive brief in Markdown.",
	Long: `Score a snapshot and render a one-page executive brief.

The brief lists the portfolio snapshot, the top emerging risks with a
decision prompt each, positive momentum, and the standing decision prompts.

Examples:
  # Print the brief for this week
  pulse brief snapshot.csv --week-ending 2025-01-10

  # Write the brief to a bucket and record the run
  pulse brief snapshot.csv --record --output-file s3://reports/brief.md`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot render brief", core.ExecuteBrief)
	},
}
