package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deliverypulse/pulse/core/ingest"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

// StdinPath reads the snapshot from standard input.
const StdinPath = "-"

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// readSource reads a whole source from stdin, a local path or an object
// store URI.
func readSource(ctx context.Context, blobs contract.BlobStore, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, errors.New("no input snapshot given")
	case StdinPath:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	default:
		return blobs.Read(ctx, path)
	}
}

// loadBatch reads and parses the input snapshot named by the config.
func loadBatch(ctx context.Context, cfg *contract.Config, blobs contract.BlobStore, format schema.InputFormat) (ingest.Batch, error) {
	data, err := readSource(ctx, blobs, cfg.InputPath)
	if err != nil {
		return ingest.Batch{}, err
	}
	return ingest.Parse(data, ingest.DetectFormat(cfg.InputPath, format), cfg.WeekEnding)
}

// resolvePrior returns the prior snapshot: an explicit --prior source wins,
// otherwise the newest earlier run in the history store. A nil snapshot
// means none was found.
func resolvePrior(ctx context.Context, cfg *contract.Config, blobs contract.BlobStore, store contract.HistoryStore, weekEnding string) (*schema.Snapshot, error) {
	logger := contract.LoggerFromContext(ctx)

	if cfg.PriorPath != "" {
		data, err := readSource(ctx, blobs, cfg.PriorPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prior snapshot: %w", err)
		}
		prior, err := ingest.ParseSnapshot(data)
		if err != nil {
			return nil, err
		}
		logger.Debugw("loaded prior snapshot", "source", cfg.PriorPath, "entities", len(prior.Entities))
		return prior, nil
	}

	if store == nil || weekEnding == "" {
		return nil, nil
	}
	prior, err := store.LatestSnapshotBefore(ctx, weekEnding)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior snapshot from history: %w", err)
	}
	if prior != nil {
		logger.Debugw("loaded prior snapshot from history", "week_ending", prior.WeekEnding, "entities", len(prior.Entities))
	}
	return prior, nil
}
