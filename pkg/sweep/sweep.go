// Package sweep reclaims work items whose processing attempt died or
// hung. It is the sole recovery path for items claimed by a crashed
// worker: without it those items would stay PROCESSING forever.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/schedule"
)

// Detector periodically transitions stalled PROCESSING items to FAILED.
//
// Timeout must exceed the maximum plausible single-item latency including
// all resilient-caller retries, or the sweep reclaims still-running items.
// The schedule should fire materially more often than Timeout so
// reclamation latency stays bounded.
type Detector struct {
	store   core.Store
	timeout time.Duration
	sched   schedule.Schedule
	logger  *slog.Logger
}

// NewDetector creates a stall detector. A nil schedule sweeps every five
// minutes.
func NewDetector(store core.Store, timeout time.Duration, sched schedule.Schedule, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if sched == nil {
		sched = schedule.Every(5 * time.Minute)
	}
	return &Detector{
		store:   store,
		timeout: timeout,
		sched:   sched,
		logger:  logger.With("component", "sweeper"),
	}
}

// Run sweeps on the configured schedule until ctx is cancelled.
func (d *Detector) Run(ctx context.Context) error {
	for {
		timer := time.NewTimer(time.Until(d.sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if _, err := d.Sweep(ctx); err != nil {
				d.logger.Error("stall sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one reclamation pass and returns the number of items
// transitioned to FAILED.
func (d *Detector) Sweep(ctx context.Context) (int64, error) {
	reclaimed, err := d.store.SweepStalled(ctx, d.timeout)
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		d.logger.Warn("reclaimed stalled items",
			"count", reclaimed, "timeout", d.timeout)
	}
	return reclaimed, nil
}
