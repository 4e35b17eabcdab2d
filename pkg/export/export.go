// Package export periodically hands completed screening results to an
// Exporter. Reads only; failed exports retry on the next pass by keeping
// the watermark where it was.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/schedule"
)

// Runner syncs completed results out on a schedule.
type Runner struct {
	store     core.Store
	exporter  core.Exporter
	sched     schedule.Schedule
	batchSize int
	logger    *slog.Logger

	// since is the export watermark; only results created after it are
	// handed out. Advanced only after a successful export.
	since time.Time
}

// NewRunner builds an export runner. A nil schedule exports every five
// minutes. The watermark starts at the zero time, so the first pass
// exports everything.
func NewRunner(store core.Store, exporter core.Exporter, sched schedule.Schedule, batchSize int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if sched == nil {
		sched = schedule.Every(5 * time.Minute)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Runner{
		store:     store,
		exporter:  exporter,
		sched:     sched,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run exports on the configured schedule until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if _, err := r.Export(ctx); err != nil {
			r.logger.Error("export pass failed", "error", err)
		}
		timer := time.NewTimer(time.Until(r.sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Export performs one sync pass and reports how many results went out.
func (r *Runner) Export(ctx context.Context) (int, error) {
	results, err := r.store.ListResultsCompletedSince(ctx, r.since, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list completed results: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	if err := r.exporter.Export(ctx, results); err != nil {
		return 0, fmt.Errorf("export %d results: %w", len(results), err)
	}

	// Results come back ordered by creation time; the last one carries
	// the new watermark.
	r.since = results[len(results)-1].CreatedAt

	r.logger.Info("export pass finished", "exported", len(results))
	return len(results), nil
}
