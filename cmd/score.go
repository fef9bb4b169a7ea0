package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// scoreCmd scores every entity of a snapshot.
var scoreCmd = &cobra.Command{
	Use:   "score [snapshot]",
	Short: "Score every initiative in a weekly snapshot.",
	Long: `Compute the Delivery Confidence Score (DCS) for every initiative in a snapshot.

Each initiative starts at the base score and loses points for blocked time,
scope churn, stagnation, dependencies, owner changes and target proximity.
Small bonuses are granted for progress, WIP discipline and stable scope.
Scores are banded Green, Yellow or Red and compared with the prior week.

The snapshot may be a local CSV or JSON file, an s3:// or gs:// URI, or "-"
for standard input.

Examples:
  # Score a CSV snapshot against the last recorded run
  pulse score snapshot.csv

  # Compare with an explicit prior snapshot and show the breakdown
  pulse score snapshot.json --prior last-week.json --explain

  # Record the run and export it as Parquet
  pulse score snapshot.csv --record --output parquet --output-file scores.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot score snapshot", core.ExecuteScore)
	},
}
