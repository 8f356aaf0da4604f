package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/kbreplace/internal/model"
)

// DefaultConcurrency is the number of lookups run at once when none is configured.
const DefaultConcurrency = 4

// BatchProcessor resolves several KB identifiers concurrently.
// Each lookup still runs its own steps sequentially.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each lookup.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent lookups.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent lookups.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor. pipelineFactory is called
// once per lookup.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch resolves inputs and returns one lookup per input, in input
// order. The first failing lookup cancels the ones still running and its
// error, prefixed with the input, is returned. Lookups that never started
// are left nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]*model.Lookup, error) {
	bp.logger.Debug("starting batch",
		"total", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.Lookup, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			lookup := model.NewLookup(input)
			results[i] = lookup

			if err := bp.pipelineFactory().Execute(ctx, lookup); err != nil {
				bp.logger.Debug("lookup failed",
					"kb", input,
					"error", err,
				)
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch complete",
		"total", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
