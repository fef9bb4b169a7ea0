package core

import (
	"bytes"
	"fmt"

	"github.com/deliverypulse/pulse/core/algo"
	"github.com/deliverypulse/pulse/core/ingest"
	"github.com/deliverypulse/pulse/internal/brief"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

// Options controls one pipeline run.
type Options struct {
	Rules         schema.Rules
	Columns       map[string]string
	RiskLimit     int
	PositiveLimit int
}

// OptionsFromConfig extracts pipeline options from a validated config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		Rules:         cfg.Rules,
		Columns:       cfg.ColumnAliases,
		RiskLimit:     cfg.RiskLimit,
		PositiveLimit: cfg.PositiveLimit,
	}
}

// Result holds everything one run derives from a snapshot.
type Result struct {
	Snapshot  schema.Snapshot
	Summary   schema.PortfolioSummary
	Heatmap   schema.Heatmap
	Risks     []schema.RankedRisk
	Positives []schema.ScoredEntity

	// Warnings are non-fatal problems such as unknown statuses or unmatched
	// prior entries.
	Warnings []error
}

// RunPipeline normalizes, scores, trends, aggregates and ranks a batch.
// It is a pure function of its inputs: all reads happen before it is
// called and all writes after it returns. A nil prior means no prior
// snapshot was found, so inline prior scores apply.
func RunPipeline(batch ingest.Batch, prior *schema.Snapshot, opts Options) (*Result, error) {
	columns, err := ingest.NewColumnMap(opts.Columns)
	if err != nil {
		return nil, err
	}
	entities, warnings, err := ingest.Normalize(batch, ingest.Options{
		Columns:           columns,
		NearDoneThreshold: opts.Rules.NearDoneThreshold,
	})
	if err != nil {
		return nil, err
	}

	scored := algo.ScoreEntities(entities, opts.Rules)
	warnings = append(warnings, algo.ApplyTrends(scored, prior, opts.Rules)...)
	if prior != nil && prior.WeekEnding != "" && prior.WeekEnding >= batch.WeekEnding {
		warnings = append(warnings, fmt.Errorf("prior snapshot week ending %s is not before %s", prior.WeekEnding, batch.WeekEnding))
	}

	snap := schema.Snapshot{WeekEnding: batch.WeekEnding, Entities: scored}
	return &Result{
		Snapshot:  snap,
		Summary:   algo.Summarize(snap),
		Heatmap:   algo.BuildHeatmap(snap),
		Risks:     algo.BuildRiskList(scored, opts.RiskLimit),
		Positives: algo.RankPositives(scored, opts.PositiveLimit),
		Warnings:  warnings,
	}, nil
}

// Brief renders the executive brief for the result.
func (r *Result) Brief() (string, error) {
	return brief.Render(brief.Input{
		Summary:   r.Summary,
		Risks:     r.Risks,
		Positives: r.Positives,
	})
}

// RunJSON runs the pipeline over rows sent inline as a JSON array, as API
// and tool callers do. priorJSON may be empty or "null" when there is no
// prior snapshot.
func RunJSON(weekEnding string, rowsJSON, priorJSON []byte, opts Options) (*Result, error) {
	rows, err := ingest.RowsFromJSON(rowsJSON)
	if err != nil {
		return nil, err
	}
	var prior *schema.Snapshot
	if trimmed := bytes.TrimSpace(priorJSON); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if prior, err = ingest.ParseSnapshot(trimmed); err != nil {
			return nil, err
		}
	}
	return RunPipeline(ingest.Batch{WeekEnding: weekEnding, Rows: rows}, prior, opts)
}
