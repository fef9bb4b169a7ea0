package cmd

import (
	"github.com/deliverypulse/pulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pulse MCP server",
	Long: `Launch an MCP server on stdio so AI agents can score snapshots, rank risks
and render briefs through standard tools.

Tools: score_snapshot, executive_brief, top_risks.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
