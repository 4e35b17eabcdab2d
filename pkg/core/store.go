package core

import (
	"context"
	"time"
)

// Store defines the persistence layer for the lifecycle engine.
//
// All mutation is via single-row conditional updates or single-transaction
// multi-row writes; no advisory locks are taken. Any store offering atomic
// conditional writes can implement it.
type Store interface {
	// Migrate creates the necessary tables.
	Migrate(ctx context.Context) error

	// Ingestion
	InsertItem(ctx context.Context, item *WorkItem) error

	// Eligibility reads. Plain reads: neither locks rows.
	ListEligible(ctx context.Context, limit int) ([]*WorkItem, error)
	ListStalled(ctx context.Context, timeout time.Duration) ([]*WorkItem, error)

	// Claim atomically transitions an eligible item to PROCESSING and
	// clears its error message. Returns ErrClaimLost if another worker
	// got there first.
	Claim(ctx context.Context, itemID uint) error

	// Finalization. Complete writes the result, resolves fingerprint
	// collisions (delete-and-replace) and transitions the item to
	// COMPLETED, all in one transaction. MarkFailed and MarkSkipped
	// release the claim with a reason.
	Complete(ctx context.Context, itemID uint, result *ScreeningResult) error
	MarkFailed(ctx context.Context, itemID uint, errMsg string) error
	MarkSkipped(ctx context.Context, itemID uint, reason string) error

	// SweepStalled reclaims items stuck in PROCESSING past the timeout,
	// transitioning them to FAILED. Returns the number reclaimed.
	SweepStalled(ctx context.Context, timeout time.Duration) (int64, error)

	// Batch audit records.
	CreateBatch(ctx context.Context, batch *Batch) error
	FinalizeBatch(ctx context.Context, batchID uint, stats BatchStats) error

	// Queries
	GetItem(ctx context.Context, itemID uint) (*WorkItem, error)
	FindResultByFingerprint(ctx context.Context, fingerprint string) (*ScreeningResult, error)
	ListResultsCompletedSince(ctx context.Context, since time.Time, limit int) ([]*ScreeningResult, error)
}

// BatchStats aggregates per-chunk outcomes into a Batch record.
type BatchStats struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Add merges another stats value into s.
func (s *BatchStats) Add(other BatchStats) {
	s.Total += other.Total
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}
