// Package core has core logic for scoring, trending, aggregation and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/deliverypulse/pulse/core/ingest"
	"github.com/deliverypulse/pulse/internal/blobstore"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/outwriter"
	"github.com/deliverypulse/pulse/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ExecuteScore scores the input snapshot and prints every entity.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeRun(ctx, cfg, mgr, func(ow *outwriter.OutWriter, res *Result) error {
		return ow.WriteScores(ctx, res.Snapshot, res.Summary, cfg)
	})
}

// ExecuteBrief scores the input snapshot and prints the executive brief.
func ExecuteBrief(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeRun(ctx, cfg, mgr, func(ow *outwriter.OutWriter, res *Result) error {
		text, err := res.Brief()
		if err != nil {
			return err
		}
		return ow.WriteBrief(ctx, res.Snapshot.WeekEnding, text, cfg)
	})
}

// ExecuteRisks scores the input snapshot and prints the emerging risks.
func ExecuteRisks(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeRun(ctx, cfg, mgr, func(ow *outwriter.OutWriter, res *Result) error {
		return ow.WriteRisks(ctx, res.Snapshot.WeekEnding, res.Risks, cfg)
	})
}

// ExecuteHeatmap scores the input snapshot and prints the driver heatmap.
func ExecuteHeatmap(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeRun(ctx, cfg, mgr, func(ow *outwriter.OutWriter, res *Result) error {
		return ow.WriteHeatmap(ctx, res.Heatmap, cfg)
	})
}

// ExecuteTransform rolls a Jira export up into canonical snapshot rows.
// Nothing is scored.
func ExecuteTransform(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	blobs := blobstore.New(cfg.Blob)
	defer func() { _ = blobs.Close() }()

	batch, err := loadBatch(ctx, cfg, blobs, schema.JiraInput)
	if err != nil {
		return err
	}
	rows := make([]map[string]string, len(batch.Rows))
	for i, r := range batch.Rows {
		rows[i] = r
	}
	return outwriter.NewOutWriter(blobs).WriteRows(ctx, batch.WeekEnding, ingest.JiraOutputFields, rows, cfg)
}

// ExecuteRules prints the active scoring rules.
func ExecuteRules(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	blobs := blobstore.New(cfg.Blob)
	defer func() { _ = blobs.Close() }()
	return outwriter.NewOutWriter(blobs).WriteRules(ctx, cfg.Rules, cfg)
}

// executeRun reads the inputs, runs the pipeline, writes the output and
// then records the run. Nothing is written when any earlier step fails.
func executeRun(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, write func(*outwriter.OutWriter, *Result) error) error {
	start := time.Now()
	logger := contract.LoggerFromContext(ctx)

	blobs := blobstore.New(cfg.Blob)
	defer func() { _ = blobs.Close() }()

	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}

	batch, err := loadBatch(ctx, cfg, blobs, cfg.InputFormat)
	if err != nil {
		return err
	}
	prior, err := resolvePrior(ctx, cfg, blobs, store, batch.WeekEnding)
	if err != nil {
		return err
	}

	res, err := RunPipeline(batch, prior, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		contract.LogWarn("prior snapshot", w)
	}
	logger.Debugw("scored snapshot",
		"week_ending", res.Snapshot.WeekEnding,
		"entities", len(res.Snapshot.Entities),
		"risks", len(res.Risks),
		"duration", time.Since(start))

	if err := write(outwriter.NewOutWriter(blobs), res); err != nil {
		return err
	}

	if !cfg.Record {
		return nil
	}
	if store == nil {
		contract.LogWarn("record", fmt.Errorf("history store is not initialized; run not recorded"))
		return nil
	}
	return RecordRun(ctx, store, cfg, res.Snapshot, start)
}

// RecordRun persists a scored snapshot as one finished run.
func RecordRun(ctx context.Context, store contract.HistoryStore, cfg *contract.Config, snap schema.Snapshot, startedAt time.Time) error {
	runID, err := store.BeginRun(ctx, snap.WeekEnding, startedAt, cfg.Params())
	if err != nil {
		return fmt.Errorf("failed to begin run: %w", err)
	}
	if err := store.RecordSnapshot(ctx, runID, snap); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	if err := store.EndRun(ctx, runID, time.Now(), len(snap.Entities)); err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	contract.LoggerFromContext(ctx).Infow("recorded run", "run_id", runID, "week_ending", snap.WeekEnding, "entities", len(snap.Entities))
	return nil
}
