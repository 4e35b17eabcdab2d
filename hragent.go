// Package hragent provides a durable resume-screening pipeline: inbound
// messages become work items, items are claimed and scored concurrently,
// and completed results are deduplicated and exported.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	db, _ := storage.Open("hragent.db")
//	store := hragent.NewGormStorage(db)
//	store.Migrate(context.Background())
//
//	coord := hragent.NewCoordinator(store, classifier, scorer)
//	orch := hragent.NewOrchestrator(store, coord, hragent.DefaultConfig(), nil)
//	orch.Run(ctx)
package hragent

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/starORAIT/HRAgent/pkg/batch"
	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/dedup"
	"github.com/starORAIT/HRAgent/pkg/resilient"
	"github.com/starORAIT/HRAgent/pkg/schedule"
	"github.com/starORAIT/HRAgent/pkg/screen"
	"github.com/starORAIT/HRAgent/pkg/security"
	"github.com/starORAIT/HRAgent/pkg/storage"
	"github.com/starORAIT/HRAgent/pkg/sweep"
)

// Type aliases for the public API surface.
type (
	// WorkItem is one unit of inbound content tracked through the lifecycle.
	WorkItem = core.WorkItem

	// ScreeningResult is the durable output of processing one work item.
	ScreeningResult = core.ScreeningResult

	// Batch is the audit record for one processing cycle.
	Batch = core.Batch

	// BatchStats aggregates per-chunk outcomes.
	BatchStats = core.BatchStats

	// ItemStatus represents the current state of a work item.
	ItemStatus = core.ItemStatus

	// Store defines the persistence layer for the lifecycle engine.
	Store = core.Store

	// Classifier decides whether a work item is a target item.
	Classifier = core.Classifier

	// Scorer evaluates extracted content against a position label.
	Scorer = core.Scorer

	// Source produces normalized inbound messages for ingestion.
	Source = core.Source

	// Exporter consumes completed screening results.
	Exporter = core.Exporter

	// Event is the interface for all coordinator events.
	Event = core.Event

	// ItemClaimed is emitted when a worker wins a claim.
	ItemClaimed = core.ItemClaimed

	// ItemCompleted is emitted when an item finishes successfully.
	ItemCompleted = core.ItemCompleted

	// ItemFailed is emitted when an item is marked failed.
	ItemFailed = core.ItemFailed

	// ItemSkipped is emitted when classification rules an item out.
	ItemSkipped = core.ItemSkipped

	// TransientError indicates a dependency failure worth retrying.
	TransientError = core.TransientError

	// MalformedResponseError indicates an unusable dependency response.
	MalformedResponseError = core.MalformedResponseError

	// OutOfScopeError routes an item to SKIPPED.
	OutOfScopeError = core.OutOfScopeError

	// ExhaustedRetriesError is raised after the retry budget runs out.
	ExhaustedRetriesError = core.ExhaustedRetriesError

	// Coordinator claims and processes individual work items.
	Coordinator = screen.Coordinator

	// CoordinatorOption configures a Coordinator.
	CoordinatorOption = screen.Option

	// Orchestrator drives whole processing cycles.
	Orchestrator = batch.Orchestrator

	// Config holds orchestrator configuration.
	Config = batch.Config

	// Policy drives the resilient retry loop.
	Policy = resilient.Policy

	// Detector reclaims items stuck in PROCESSING.
	Detector = sweep.Detector

	// Deduplicator resolves fingerprint collisions between results.
	Deduplicator = dedup.Deduplicator

	// Schedule defines when a recurring task should run next.
	Schedule = schedule.Schedule

	// GormStorage implements Store using GORM.
	GormStorage = storage.GormStorage
)

// Status constants
const (
	StatusNew        = core.StatusNew
	StatusProcessing = core.StatusProcessing
	StatusCompleted  = core.StatusCompleted
	StatusFailed     = core.StatusFailed
	StatusSkipped    = core.StatusSkipped
)

// QualifyingScore is the composite score at or above which a candidate
// passes the initial screen.
const QualifyingScore = core.QualifyingScore

// Security limits
const (
	MaxErrorMessageLength = security.MaxErrorMessageLength
	MaxRetryAttempts      = security.MaxRetryAttempts
	MaxWorkerCount        = security.MaxWorkerCount
	MaxChunkSize          = security.MaxChunkSize
)

// Error variables
var (
	ErrClaimLost         = core.ErrClaimLost
	ErrDuplicateItem     = core.ErrDuplicateItem
	ErrItemNotProcessing = core.ErrItemNotProcessing
)

// NewGormStorage creates a new GORM-backed store.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return storage.NewGormStorage(db)
}

// Open connects to the database described by dsn.
func Open(dsn string) (*gorm.DB, error) {
	return storage.Open(dsn)
}

// NewCoordinator builds a claim-and-process coordinator.
func NewCoordinator(store Store, classifier Classifier, scorer Scorer, opts ...CoordinatorOption) *Coordinator {
	return screen.New(store, classifier, scorer, opts...)
}

// NewOrchestrator builds a cycle orchestrator.
func NewOrchestrator(store Store, coord *Coordinator, config Config, logger *slog.Logger) *Orchestrator {
	return batch.New(store, coord, config, logger)
}

// NewDetector builds a standalone stall detector. A nil schedule sweeps
// every five minutes.
func NewDetector(store Store, timeout time.Duration, sched Schedule, logger *slog.Logger) *Detector {
	return sweep.NewDetector(store, timeout, sched, logger)
}

// Every returns a schedule that fires at a fixed interval.
func Every(interval time.Duration) Schedule {
	return schedule.Every(interval)
}

// Daily returns a schedule that fires once a day at the given UTC time.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// ParseCron parses a five-field cron expression into a schedule.
func ParseCron(expr string) (Schedule, error) {
	return schedule.ParseCron(expr)
}

// NewDeduplicator builds a result deduplicator over the store.
func NewDeduplicator(store Store) *Deduplicator {
	return dedup.New(store)
}

// DefaultConfig returns orchestrator defaults.
func DefaultConfig() Config {
	return batch.DefaultConfig()
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return resilient.DefaultPolicy()
}

// Fingerprint hashes normalized content for deduplication.
func Fingerprint(text string) string {
	return dedup.Fingerprint(text)
}

// Transient wraps an error as a retryable dependency failure.
func Transient(kind core.TransientKind, err error) error {
	return core.Transient(kind, err)
}

// Malformed wraps an error as an unusable dependency response.
func Malformed(err error) error {
	return core.Malformed(err)
}

// OutOfScope marks an item as not a target item.
func OutOfScope(reason string) error {
	return core.OutOfScope(reason)
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeErrorMessage(msg)
}

// Retry runs op under the given policy with escalating per-attempt
// deadlines.
func Retry[T any](ctx context.Context, policy Policy, logger *slog.Logger, op func(ctx context.Context) (T, error)) (T, error) {
	return resilient.Do[T](ctx, policy, logger, op)
}
