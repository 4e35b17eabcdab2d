// Package ingest pulls normalized messages from a Source and persists them
// as work items. Re-fetching the same message is a no-op, so the loop can
// run on a schedule without coordination.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/dedup"
	"github.com/starORAIT/HRAgent/pkg/schedule"
)

// Runner periodically fetches from a source and inserts work items.
type Runner struct {
	store      core.Store
	source     core.Source
	sched      schedule.Schedule
	fetchLimit int
	logger     *slog.Logger
}

// NewRunner builds an ingestion runner. A nil schedule ingests every five
// minutes.
func NewRunner(store core.Store, source core.Source, sched schedule.Schedule, fetchLimit int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if sched == nil {
		sched = schedule.Every(5 * time.Minute)
	}
	if fetchLimit <= 0 {
		fetchLimit = 200
	}
	return &Runner{
		store:      store,
		source:     source,
		sched:      sched,
		fetchLimit: fetchLimit,
		logger:     logger,
	}
}

// Run ingests on the configured schedule until ctx is cancelled. The first
// pass happens immediately.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if _, err := r.Ingest(ctx); err != nil {
			r.logger.Error("ingestion pass failed", "error", err)
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

// Ingest performs a single fetch-and-insert pass and reports how many new
// items were stored. Duplicates are counted separately and not treated as
// errors.
func (r *Runner) Ingest(ctx context.Context) (int, error) {
	messages, err := r.source.Fetch(ctx, r.fetchLimit)
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	inserted, duplicates := 0, 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		item := itemFromMessage(msg)
		if err := r.store.InsertItem(ctx, item); err != nil {
			if errors.Is(err, core.ErrDuplicateItem) {
				duplicates++
				continue
			}
			return inserted, fmt.Errorf("insert item %s: %w", msg.SourceID, err)
		}
		inserted++
	}

	r.logger.Info("ingestion pass finished",
		"fetched", len(messages),
		"inserted", inserted,
		"duplicates", duplicates)
	return inserted, nil
}

// itemFromMessage builds a NEW work item, fingerprinting the content once
// at ingestion so claims and dedup never recompute it.
func itemFromMessage(msg core.Message) *core.WorkItem {
	return &core.WorkItem{
		SourceID:      msg.SourceID,
		Mailbox:       msg.Mailbox,
		Subject:       msg.Subject,
		FromAddress:   msg.FromAddress,
		Content:       msg.Content,
		AttachmentRef: msg.AttachmentRef,
		Fingerprint:   dedup.Fingerprint(msg.Content),
		Status:        core.StatusNew,
		ReceivedAt:    time.Unix(msg.ReceivedAt, 0),
	}
}
