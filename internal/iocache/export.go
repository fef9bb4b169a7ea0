package iocache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/parquet"
)

// ExecuteHistoryExport exports every stored run and entity score to two
// Parquet objects named after outputFile. Progress goes to w.
func ExecuteHistoryExport(ctx context.Context, store contract.HistoryStore, blobs contract.BlobStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total entity scores: %d\n", status.TableSizes[entityScoresTable])

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.ListEntityScores(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve entity scores: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := writeParquet(ctx, blobs, runsFile, parquetRuns); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetScores := parquet.ConvertEntityScoreRecords(scores)
	scoresFile := outputFile + ".entity_scores.parquet"
	if err := writeParquet(ctx, blobs, scoresFile, parquetScores); err != nil {
		return fmt.Errorf("failed to write entity scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d entity scores to: %s\n", len(parquetScores), scoresFile)

	return nil
}

// writeParquet renders rows in memory and writes them as one object.
func writeParquet[T any](ctx context.Context, blobs contract.BlobStore, uri string, rows []T) error {
	var buf bytes.Buffer
	if err := parquet.WriteRows(&buf, rows); err != nil {
		return err
	}
	return blobs.Write(ctx, uri, buf.Bytes())
}
