package cmd

import (
	"github.com/deliverypulse/pulse/core"
	"github.com/spf13/cobra"
)

// rulesCmd prints the active scoring rules.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active scoring rules.",
	Long: `Show the scoring rules after merging overrides from the config file.

Override any rule under the "rules" key of .pulse.yaml, for example:

  rules:
    green_threshold: 80
    scope_stable_bonus: 0

Examples:
  # Inspect the effective rules
  pulse rules

  # Dump them as YAML
  pulse rules --output yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot print rules", core.ExecuteRules)
	},
}
