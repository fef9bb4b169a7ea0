package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deliverypulse/pulse/core"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// run parses the shared tool arguments and executes the pipeline. A non-nil
// tool result means the call failed and should be returned as is.
func (h *toolHandler) run(request mcp.CallToolRequest) (*core.Result, int, *mcp.CallToolResult) {
	rows := request.GetString("rows_json", "")
	if rows == "" {
		return nil, 0, mcp.NewToolResultError("rows_json is required")
	}
	weekEnding := request.GetString("week_ending", "")
	if weekEnding == "" {
		return nil, 0, mcp.NewToolResultError("week_ending is required")
	}
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return nil, 0, mcp.NewToolResultError("limit must be non-negative")
	}

	opts := core.OptionsFromConfig(h.baseCfg.Clone())
	if limit > 0 {
		opts.RiskLimit = limit
		opts.PositiveLimit = limit
	}

	res, err := core.RunJSON(weekEnding, []byte(rows), []byte(request.GetString("prior_json", "")), opts)
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return nil, 0, mcp.NewToolResultError(fmt.Sprintf("invalid snapshot: %v", err))
		}
		return nil, 0, mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err))
	}
	return res, limit, nil
}

func (h *toolHandler) handleScoreSnapshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, limit, failed := h.run(request)
	if failed != nil {
		return failed, nil
	}

	entities := res.Snapshot.Entities
	if limit > 0 && len(entities) > limit {
		entities = entities[:limit]
	}
	payload := struct {
		WeekEnding string                  `json:"week_ending"`
		Summary    schema.PortfolioSummary `json:"summary"`
		Entities   []schema.ScoredEntity   `json:"entities"`
		Warnings   []string                `json:"warnings,omitempty"`
	}{res.Snapshot.WeekEnding, res.Summary, entities, warningTexts(res.Warnings)}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExecutiveBrief(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, _, failed := h.run(request)
	if failed != nil {
		return failed, nil
	}

	text, err := res.Brief()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("brief rendering failed: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandler) handleTopRisks(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, _, failed := h.run(request)
	if failed != nil {
		return failed, nil
	}

	payload := struct {
		WeekEnding string              `json:"week_ending"`
		Risks      []schema.RankedRisk `json:"risks"`
		Warnings   []string            `json:"warnings,omitempty"`
	}{res.Snapshot.WeekEnding, res.Risks, warningTexts(res.Warnings)}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func warningTexts(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
