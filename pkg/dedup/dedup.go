// Package dedup computes content fingerprints and resolves collisions
// against previously stored screening results.
//
// A single fingerprint is computed at ingestion from the normalized
// extracted text and reused for both ingestion-level and result-level
// deduplication.
package dedup

import (
	"context"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/starORAIT/HRAgent/pkg/core"
)

// Resolution is the outcome of deduplication against the store.
type Resolution int

const (
	// ResolutionNew means no result shares the fingerprint.
	ResolutionNew Resolution = iota
	// ResolutionReplace means an existing result must be deleted and
	// replaced in the same transaction as the new insert.
	ResolutionReplace
)

func (r Resolution) String() string {
	if r == ResolutionReplace {
		return "replace"
	}
	return "new"
}

// Outcome carries the resolution and, for ResolutionReplace, the id of
// the result being superseded.
type Outcome struct {
	Resolution Resolution
	ExistingID uint
}

// Normalize collapses all whitespace runs in text to single spaces and
// trims the ends. Fingerprints are computed over normalized text so
// formatting-only differences do not defeat deduplication.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint hashes normalized content. Empty or whitespace-only content
// returns "" — such items could not be reliably extracted and are never
// deduplicated.
func Fingerprint(text string) string {
	normalized := Normalize(text)
	if normalized == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(normalized), 16)
}

// Deduplicator resolves fingerprints against the store.
type Deduplicator struct {
	store core.Store
}

// New creates a Deduplicator backed by the given store.
func New(store core.Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// Resolve reports whether a result with the given fingerprint already
// exists. An empty fingerprint is always ResolutionNew. The transactional
// delete-and-replace itself happens inside Store.Complete; Resolve is the
// advisory read used for logging and ingestion decisions.
func (d *Deduplicator) Resolve(ctx context.Context, fingerprint string) (Outcome, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return Outcome{Resolution: ResolutionNew}, nil
	}

	existing, err := d.store.FindResultByFingerprint(ctx, fingerprint)
	if err != nil {
		return Outcome{}, err
	}
	if existing == nil {
		return Outcome{Resolution: ResolutionNew}, nil
	}
	return Outcome{Resolution: ResolutionReplace, ExistingID: existing.ID}, nil
}
