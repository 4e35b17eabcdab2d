// Package screen implements the claim-and-process coordinator: workers
// atomically claim eligible work items, run classification and scoring,
// and finalize item status.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/dedup"
	"github.com/starORAIT/HRAgent/pkg/resilient"
)

// Coordinator runs the per-item state machine:
//
//	NEW/FAILED --claim--> PROCESSING --success--> COMPLETED
//	                 |--external-error--> FAILED
//	                 |--not-a-resume--> SKIPPED
//
// A claim loss is a normal outcome, not an error. Failures at this layer
// are converted into status transitions; nothing escapes to crash a
// worker over a single item.
type Coordinator struct {
	store      core.Store
	classifier core.Classifier
	scorer     core.Scorer
	dedup      *dedup.Deduplicator
	policy     resilient.Policy
	logger     *slog.Logger
	workerID   string

	mu        sync.RWMutex
	eventSubs []chan core.Event
}

// New creates a Coordinator over the given store and collaborators.
func New(store core.Store, classifier core.Classifier, scorer core.Scorer, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:      store,
		classifier: classifier,
		scorer:     scorer,
		dedup:      dedup.New(store),
		policy:     resilient.DefaultPolicy(),
		logger:     slog.Default(),
		workerID:   uuid.New().String(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// WorkerID returns the coordinator's worker identity used in logs.
func (c *Coordinator) WorkerID() string {
	return c.workerID
}

// ProcessChunk processes each item in the chunk in order and returns the
// aggregated outcome counts. Claim losses are counted as skipped work for
// the chunk but do not touch the item.
func (c *Coordinator) ProcessChunk(ctx context.Context, items []*core.WorkItem) core.BatchStats {
	stats := core.BatchStats{}
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		stats.Total++

		err := c.processItem(ctx, item)
		switch {
		case err == nil:
			stats.Succeeded++
		case errors.Is(err, core.ErrClaimLost):
			// Another worker owns the item; normal race outcome.
			stats.Total--
		default:
			var oos *core.OutOfScopeError
			if errors.As(err, &oos) {
				stats.Skipped++
			} else {
				stats.Failed++
			}
		}
	}
	return stats
}

// processItem claims one item and drives it to a terminal state for this
// cycle. The returned error reports the outcome; all persistence has
// already happened.
func (c *Coordinator) processItem(ctx context.Context, item *core.WorkItem) error {
	logger := c.logger.With("item_id", item.ID, "worker_id", c.workerID)
	start := time.Now()

	if err := c.store.Claim(ctx, item.ID); err != nil {
		if errors.Is(err, core.ErrClaimLost) {
			logger.Debug("item already claimed, abandoning")
			return err
		}
		return fmt.Errorf("claim item %d: %w", item.ID, err)
	}
	c.emit(&core.ItemClaimed{Item: item, WorkerID: c.workerID, Timestamp: start})

	// Reload the claimed row so processing sees current content.
	claimed, err := c.store.GetItem(ctx, item.ID)
	if err != nil || claimed == nil {
		return c.fail(ctx, item, fmt.Errorf("reload claimed item: %w", err))
	}

	classification, err := c.classifier.Classify(ctx, claimed)
	if err != nil {
		return c.fail(ctx, claimed, fmt.Errorf("classify: %w", err))
	}
	if !classification.InScope {
		reason := classification.Reason
		if reason == "" {
			reason = "not a resume"
		}
		if err := c.store.MarkSkipped(ctx, claimed.ID, reason); err != nil {
			logger.Error("mark skipped failed", "error", err)
			return err
		}
		logger.Info("item out of scope, skipped", "reason", reason)
		c.emit(&core.ItemSkipped{Item: claimed, Reason: reason, Timestamp: time.Now()})
		return core.OutOfScope(reason)
	}

	result, err := resilient.Do(ctx, c.policy, logger,
		func(ctx context.Context) (*core.ScreeningResult, error) {
			return c.scorer.Score(ctx, claimed.Content, classification.Label)
		})
	if err != nil {
		return c.fail(ctx, claimed, fmt.Errorf("score: %w", err))
	}
	if result == nil {
		return c.fail(ctx, claimed, errors.New("score: empty result"))
	}

	result.Position = classification.Label
	result.Channel = classification.Channel
	result.Fingerprint = claimed.Fingerprint
	result.ComputeTotals()

	outcome, err := c.dedup.Resolve(ctx, claimed.Fingerprint)
	if err != nil {
		return c.fail(ctx, claimed, fmt.Errorf("dedup resolve: %w", err))
	}
	if outcome.Resolution == dedup.ResolutionReplace {
		logger.Info("duplicate resume, replacing previous result",
			"superseded_result_id", outcome.ExistingID)
	}

	if err := c.store.Complete(ctx, claimed.ID, result); err != nil {
		return c.fail(ctx, claimed, fmt.Errorf("complete: %w", err))
	}

	logger.Info("item screened",
		"label", classification.Label,
		"score", result.TotalScore,
		"qualified", result.Qualified,
		"elapsed", time.Since(start))
	c.emit(&core.ItemCompleted{
		Item:      claimed,
		Result:    result,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
	return nil
}

// fail converts a processing error into a FAILED transition. The item
// becomes eligible again next cycle.
func (c *Coordinator) fail(ctx context.Context, item *core.WorkItem, cause error) error {
	c.logger.Error("item processing failed",
		"item_id", item.ID, "worker_id", c.workerID, "error", cause)
	if err := c.store.MarkFailed(ctx, item.ID, cause.Error()); err != nil &&
		!errors.Is(err, core.ErrItemNotProcessing) {
		c.logger.Error("mark failed errored", "item_id", item.ID, "error", err)
	}
	c.emit(&core.ItemFailed{Item: item, Error: cause, Timestamp: time.Now()})
	return cause
}

// Publish delivers an event to all subscribers. The orchestrator uses it
// for cycle-level events; item-level events come from processing itself.
func (c *Coordinator) Publish(e core.Event) {
	c.emit(e)
}

// Events returns a channel receiving pipeline events. Slow consumers drop
// events rather than blocking workers.
func (c *Coordinator) Events() <-chan core.Event {
	ch := make(chan core.Event, 100)
	c.mu.Lock()
	c.eventSubs = append(c.eventSubs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Coordinator) emit(e core.Event) {
	c.mu.RLock()
	subs := make([]chan core.Event, len(c.eventSubs))
	copy(subs, c.eventSubs)
	c.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}
