// Package outwriter has output and writer logic.
package outwriter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

// OutWriter provides a unified interface for all output operations.
// Every result is rendered in memory first, so a failed rendering never
// leaves a partial file behind.
type OutWriter struct {
	stdout io.Writer
	stderr io.Writer
	blobs  contract.BlobStore
}

// NewOutWriter creates a new instance of the output writer. Output files
// are written through blobs, which may be nil when only stdout is used.
func NewOutWriter(blobs contract.BlobStore) *OutWriter {
	return &OutWriter{stdout: os.Stdout, stderr: os.Stderr, blobs: blobs}
}

// WriteScores prints the scored snapshot using the configured output format.
func (ow *OutWriter) WriteScores(ctx context.Context, snap schema.Snapshot, summary schema.PortfolioSummary, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "scores", func(w io.Writer) error {
		return renderScores(w, snap, summary, cfg)
	})
}

// WriteRisks prints the ranked risk list using the configured output format.
func (ow *OutWriter) WriteRisks(ctx context.Context, weekEnding string, risks []schema.RankedRisk, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "risks", func(w io.Writer) error {
		return renderRisks(w, weekEnding, risks, cfg)
	})
}

// WriteHeatmap prints the driver heatmap using the configured output format.
func (ow *OutWriter) WriteHeatmap(ctx context.Context, h schema.Heatmap, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "heatmap", func(w io.Writer) error {
		return renderHeatmap(w, h, cfg)
	})
}

// WriteBrief prints a rendered brief. The brief is Markdown in every mode
// except json and yaml, which wrap it with its week ending.
func (ow *OutWriter) WriteBrief(ctx context.Context, weekEnding, brief string, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "brief", func(w io.Writer) error {
		return renderBrief(w, weekEnding, brief, cfg)
	})
}

// WriteRules prints the active scoring rules using the configured output format.
func (ow *OutWriter) WriteRules(ctx context.Context, rules schema.Rules, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "rules", func(w io.Writer) error {
		return renderRules(w, rules, cfg)
	})
}

// WriteRows prints canonical raw rows, as produced by a Jira rollup.
func (ow *OutWriter) WriteRows(ctx context.Context, weekEnding string, fields []string, rows []map[string]string, cfg *contract.Config) error {
	return ow.emit(ctx, cfg.OutputFile, "rows", func(w io.Writer) error {
		return renderRows(w, weekEnding, fields, rows, cfg)
	})
}

// emit renders into memory and then writes the result to stdout or to
// outputFile, which may be a local path or an object store URI.
func (ow *OutWriter) emit(ctx context.Context, outputFile, what string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	if outputFile == "" {
		_, err := ow.stdout.Write(buf.Bytes())
		return err
	}
	if ow.blobs == nil {
		return errors.New("cannot write output file without a blob store")
	}
	if err := ow.blobs.Write(ctx, outputFile, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	_, _ = fmt.Fprintf(ow.stderr, "💾 Wrote %s to %s\n", what, outputFile)
	return nil
}
