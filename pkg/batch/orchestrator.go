// Package batch partitions the eligible backlog into bounded chunks,
// fans them out across a worker pool, and aggregates per-cycle outcome
// statistics into Batch audit records.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/schedule"
	"github.com/starORAIT/HRAgent/pkg/screen"
	"github.com/starORAIT/HRAgent/pkg/security"
)

// Config holds orchestration parameters for one cycle loop.
type Config struct {
	// ClaimBatchLimit bounds how many eligible items one cycle pulls.
	ClaimBatchLimit int
	// ChunkSize is the number of items handed to one worker at a time.
	ChunkSize int
	// WorkerCount bounds the number of concurrent chunk workers.
	WorkerCount int
	// StallTimeout is how long a PROCESSING item may go without progress
	// before the pre-cycle sweep reclaims it.
	StallTimeout time.Duration
	// ChunkTimeout bounds how long the cycle waits for a single chunk.
	// A timed-out chunk counts its items as failed in the batch record
	// only; item rows stay PROCESSING for the stall detector.
	ChunkTimeout time.Duration
	// CycleInterval is the sleep between cycles. Ignored when
	// CycleSchedule is set.
	CycleInterval time.Duration
	// CycleSchedule, when set, decides when the next cycle starts
	// instead of the fixed CycleInterval.
	CycleSchedule schedule.Schedule
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ClaimBatchLimit: 50,
		ChunkSize:       10,
		WorkerCount:     5,
		StallTimeout:    30 * time.Minute,
		ChunkTimeout:    5 * time.Minute,
		CycleInterval:   60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ClaimBatchLimit <= 0 {
		c.ClaimBatchLimit = d.ClaimBatchLimit
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	c.ChunkSize = security.ClampChunkSize(c.ChunkSize)
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	c.WorkerCount = security.ClampWorkers(c.WorkerCount)
	if c.StallTimeout <= 0 {
		c.StallTimeout = d.StallTimeout
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = d.ChunkTimeout
	}
	if c.CycleInterval <= 0 {
		c.CycleInterval = d.CycleInterval
	}
	if c.CycleSchedule == nil {
		c.CycleSchedule = schedule.Every(c.CycleInterval)
	}
	return c
}

// Orchestrator runs the fetch-eligible, dispatch, aggregate cycle.
type Orchestrator struct {
	store  core.Store
	coord  *screen.Coordinator
	config Config
	logger *slog.Logger
}

// New creates an Orchestrator over the store and coordinator.
func New(store core.Store, coord *screen.Coordinator, config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:  store,
		coord:  coord,
		config: config.withDefaults(),
		logger: logger.With("component", "orchestrator"),
	}
}

// Run repeats cycles on the configured schedule until ctx is cancelled.
// A failed cycle is logged and the loop continues; item state is always
// recoverable through the stall sweep.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if _, err := o.RunCycle(ctx); err != nil && ctx.Err() == nil {
			o.logger.Error("cycle failed", "error", err)
		}

		timer := time.NewTimer(time.Until(o.config.CycleSchedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunCycle executes one orchestration cycle: sweep stalled items, fetch
// the eligible backlog, fan chunks out across the worker pool, and
// finalize a Batch audit record. Returns the finalized batch, or nil when
// there was nothing to process.
func (o *Orchestrator) RunCycle(ctx context.Context) (*core.Batch, error) {
	cycleStart := time.Now()

	// Reclaim abandoned items first so they are eligible this cycle.
	reclaimed, err := o.store.SweepStalled(ctx, o.config.StallTimeout)
	if err != nil {
		return nil, fmt.Errorf("pre-cycle sweep: %w", err)
	}
	if reclaimed > 0 {
		o.logger.Warn("pre-cycle sweep reclaimed items", "count", reclaimed)
	}

	items, err := o.store.ListEligible(ctx, o.config.ClaimBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("list eligible: %w", err)
	}
	if len(items) == 0 {
		o.logger.Debug("no eligible items")
		return nil, nil
	}

	batch := &core.Batch{
		BatchID:    fmt.Sprintf("cycle_%s", cycleStart.Format("20060102_150405")),
		TotalCount: len(items),
		StartedAt:  cycleStart,
	}
	if err := o.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	o.logger.Info("cycle started",
		"batch_id", batch.BatchID, "items", len(items), "reclaimed", reclaimed)

	stats := o.dispatch(ctx, items)

	if err := o.store.FinalizeBatch(ctx, batch.ID, stats); err != nil {
		return nil, fmt.Errorf("finalize batch: %w", err)
	}

	o.coord.Publish(&core.CycleFinished{Batch: batch, Stats: stats, Timestamp: time.Now()})
	o.logger.Info("cycle finished",
		"batch_id", batch.BatchID,
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"elapsed", time.Since(cycleStart))
	return batch, nil
}

// dispatch partitions items into chunks and feeds them to a bounded pool
// of workers. Chunks share no mutable state; all coordination is through
// the store's per-item claim.
func (o *Orchestrator) dispatch(ctx context.Context, items []*core.WorkItem) core.BatchStats {
	chunks := partition(items, o.config.ChunkSize)
	chunkCh := make(chan []*core.WorkItem, len(chunks))
	for _, chunk := range chunks {
		chunkCh <- chunk
	}
	close(chunkCh)

	var (
		mu    sync.Mutex
		total core.BatchStats
		wg    sync.WaitGroup
	)

	workers := o.config.WorkerCount
	if workers > len(chunks) {
		workers = len(chunks)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkCh {
				stats := o.runChunk(ctx, chunk)
				mu.Lock()
				total.Add(stats)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return total
}

// runChunk processes one chunk under the chunk timeout. On timeout the
// unfinished items are counted as failed for the batch record; their rows
// stay PROCESSING and the stall detector reclaims them later.
func (o *Orchestrator) runChunk(ctx context.Context, chunk []*core.WorkItem) core.BatchStats {
	chunkCtx, cancel := context.WithTimeout(ctx, o.config.ChunkTimeout)
	defer cancel()

	done := make(chan core.BatchStats, 1)
	go func() {
		done <- o.coord.ProcessChunk(chunkCtx, chunk)
	}()

	select {
	case stats := <-done:
		return stats
	case <-chunkCtx.Done():
		o.logger.Error("chunk timed out, items left for stall sweep",
			"chunk_size", len(chunk), "timeout", o.config.ChunkTimeout)
		return core.BatchStats{Total: len(chunk), Failed: len(chunk)}
	}
}

// partition splits items into chunks of at most size.
func partition(items []*core.WorkItem, size int) [][]*core.WorkItem {
	if size < 1 {
		size = 1
	}
	var chunks [][]*core.WorkItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
