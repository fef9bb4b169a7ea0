// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the pulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Delivery Pulse Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: score_snapshot ---
	s.AddTool(mcp.NewTool("score_snapshot",
		mcp.WithDescription("Score a weekly delivery snapshot and return per-initiative confidence with a portfolio summary."),
		mcp.WithString("rows_json", mcp.Description("JSON array of raw initiative rows."), mcp.Required()),
		mcp.WithString("week_ending", mcp.Description("Snapshot date as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("prior_json", mcp.Description("Previously scored snapshot as JSON, used for trends.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of scored entities returned.")),
	), h.handleScoreSnapshot)

	// --- 2. Tool: executive_brief ---
	s.AddTool(mcp.NewTool("executive_brief",
		mcp.WithDescription("Render the weekly executive brief in Markdown."),
		mcp.WithString("rows_json", mcp.Description("JSON array of raw initiative rows."), mcp.Required()),
		mcp.WithString("week_ending", mcp.Description("Snapshot date as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("prior_json", mcp.Description("Previously scored snapshot as JSON, used for trends.")),
		mcp.WithNumber("limit", mcp.Description("Number of risks and positive movers to include.")),
	), h.handleExecutiveBrief)

	// --- 3. Tool: top_risks ---
	s.AddTool(mcp.NewTool("top_risks",
		mcp.WithDescription("Rank emerging delivery risks with a decision prompt for each. Red entities are always included."),
		mcp.WithString("rows_json", mcp.Description("JSON array of raw initiative rows."), mcp.Required()),
		mcp.WithString("week_ending", mcp.Description("Snapshot date as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("prior_json", mcp.Description("Previously scored snapshot as JSON, used for trends.")),
		mcp.WithNumber("limit", mcp.Description("Number of top risks before Red entities are appended.")),
	), h.handleTopRisks)

	return s
}

// StartMCPServer starts the pulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
