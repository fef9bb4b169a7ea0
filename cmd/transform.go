package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// transformCmd rolls a Jira export up into snapshot rows.
var transformCmd = &cobra.Command{
	Use:   "transform [jira-export]",
	Short: "Roll a Jira CSV export up into initiative snapshot rows.",
	Long: `Convert a Jira issue export into the canonical snapshot CSV.

Child issues are walked up their parent links to an Initiative and rolled
up into one row per initiative. Requires --week-ending.

Examples:
  # Produce a snapshot CSV from an export
  pulse transform jira.csv --week-ending 2025-01-10 --output-file snapshot.csv

  # Score the export directly
  pulse score jira.csv --format jira --week-ending 2025-01-10`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot transform export", core.ExecuteTransform)
	},
}
