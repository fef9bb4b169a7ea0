package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// heatmapCmd prints the per-entity driver heatmap.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap [snapshot]",
	Short: "Show 0-10 risk driver intensities per initiative.",
	Long: `Map every initiative onto six risk drivers scored from 0 to 10.

Columns: Confidence Risk, Blocked, Scope Volatility, Dependencies,
Due Proximity and Stagnation. Rows are sorted worst first.

Examples:
  # Table view
  pulse heatmap snapshot.csv

  # Markdown summary for a status page
  pulse heatmap snapshot.csv --output markdown

  # Heatmap CSV for a spreadsheet
  pulse heatmap snapshot.csv --output csv --output-file heatmap.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot build heatmap", core.ExecuteHeatmap)
	},
}
