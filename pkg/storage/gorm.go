// Package storage provides the GORM-backed Store implementation.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/security"
)

// GormStorage implements core.Store using GORM.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new GORM-backed store.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// DB returns the underlying *gorm.DB.
func (s *GormStorage) DB() *gorm.DB {
	return s.db
}

// Migrate creates the necessary tables.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&core.WorkItem{},
		&core.ScreeningResult{},
		&core.Batch{},
	)
}

// InsertItem appends a work item in state NEW. Insertion is idempotent per
// (source_id, mailbox): an existing row with the same pair returns
// ErrDuplicateItem and leaves the store unchanged.
func (s *GormStorage) InsertItem(ctx context.Context, item *core.WorkItem) error {
	if item.Status == "" {
		item.Status = core.StatusNew
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&core.WorkItem{}).
		Where("source_id = ? AND mailbox = ?", item.SourceID, item.Mailbox).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return core.ErrDuplicateItem
	}

	return s.db.WithContext(ctx).Create(item).Error
}

// ListEligible returns items with status NEW or FAILED in insertion order,
// bounded by limit. Plain read; locking happens only at claim time.
func (s *GormStorage) ListEligible(ctx context.Context, limit int) ([]*core.WorkItem, error) {
	var items []*core.WorkItem
	err := s.db.WithContext(ctx).
		Where("status IN ?", []core.ItemStatus{core.StatusNew, core.StatusFailed}).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// ListStalled returns items stuck in PROCESSING whose updated_at predates
// now - timeout. Plain read.
func (s *GormStorage) ListStalled(ctx context.Context, timeout time.Duration) ([]*core.WorkItem, error) {
	cutoff := time.Now().Add(-timeout)
	var items []*core.WorkItem
	err := s.db.WithContext(ctx).
		Where("status = ?", core.StatusProcessing).
		Where("updated_at < ?", cutoff).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Claim atomically transitions an eligible item to PROCESSING. The
// affected-row count is the concurrency gate: zero rows means another
// worker already claimed the item and the caller gets ErrClaimLost.
func (s *GormStorage) Claim(ctx context.Context, itemID uint) error {
	result := s.db.WithContext(ctx).
		Model(&core.WorkItem{}).
		Where("id = ? AND status IN ?", itemID,
			[]core.ItemStatus{core.StatusNew, core.StatusFailed}).
		Updates(map[string]any{
			"status":        core.StatusProcessing,
			"error_message": "",
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrClaimLost
	}
	return nil
}

// Complete persists the screening result and finalizes the item, all in
// one transaction: any existing result sharing the same non-empty
// fingerprint is deleted first, so re-ingestion of a recognizable item
// converges to the latest version instead of accumulating duplicates.
func (s *GormStorage) Complete(ctx context.Context, itemID uint, result *core.ScreeningResult) error {
	result.SourceItemID = itemID

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result.Fingerprint != "" {
			if err := tx.
				Where("fingerprint = ?", result.Fingerprint).
				Delete(&core.ScreeningResult{}).Error; err != nil {
				return fmt.Errorf("delete superseded result: %w", err)
			}
		}

		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		update := tx.
			Model(&core.WorkItem{}).
			Where("id = ? AND status = ?", itemID, core.StatusProcessing).
			Updates(map[string]any{
				"status":        core.StatusCompleted,
				"result_id":     result.ID,
				"error_message": "",
				"updated_at":    time.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return core.ErrItemNotProcessing
		}
		return nil
	})
}

// MarkFailed releases the claim with a sanitized failure reason. The item
// becomes eligible again on the next ListEligible call.
func (s *GormStorage) MarkFailed(ctx context.Context, itemID uint, errMsg string) error {
	return s.finalize(ctx, itemID, core.StatusFailed, errMsg)
}

// MarkSkipped transitions an item ruled out of scope to SKIPPED.
func (s *GormStorage) MarkSkipped(ctx context.Context, itemID uint, reason string) error {
	return s.finalize(ctx, itemID, core.StatusSkipped, reason)
}

func (s *GormStorage) finalize(ctx context.Context, itemID uint, status core.ItemStatus, msg string) error {
	result := s.db.WithContext(ctx).
		Model(&core.WorkItem{}).
		Where("id = ? AND status = ?", itemID, core.StatusProcessing).
		Updates(map[string]any{
			"status":        status,
			"error_message": security.SanitizeErrorMessage(msg),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrItemNotProcessing
	}
	return nil
}

// SweepStalled reclaims items stuck in PROCESSING past the timeout via a
// single conditional update, the same mechanism as Claim. This is the sole
// recovery path for items claimed by a crashed worker.
func (s *GormStorage) SweepStalled(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	result := s.db.WithContext(ctx).
		Model(&core.WorkItem{}).
		Where("status = ?", core.StatusProcessing).
		Where("updated_at < ?", cutoff).
		Updates(map[string]any{
			"status":        core.StatusFailed,
			"error_message": fmt.Sprintf("stalled: no progress within %s", timeout),
			"updated_at":    time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CreateBatch records the start of an orchestration cycle.
func (s *GormStorage) CreateBatch(ctx context.Context, batch *core.Batch) error {
	if batch.Status == "" {
		batch.Status = core.BatchRunning
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(batch).Error
}

// FinalizeBatch writes the aggregated outcome of a finished cycle.
func (s *GormStorage) FinalizeBatch(ctx context.Context, batchID uint, stats core.BatchStats) error {
	now := time.Now()
	status := core.BatchCompleted
	if stats.Succeeded == 0 && stats.Failed > 0 {
		status = core.BatchFailed
	}
	return s.db.WithContext(ctx).
		Model(&core.Batch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"total_count":   stats.Total,
			"success_count": stats.Succeeded,
			"failed_count":  stats.Failed,
			"skipped_count": stats.Skipped,
			"finished_at":   now,
			"status":        status,
		}).Error
}

// GetItem retrieves an item by id, or nil if it does not exist.
func (s *GormStorage) GetItem(ctx context.Context, itemID uint) (*core.WorkItem, error) {
	var item core.WorkItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindResultByFingerprint returns the result for a fingerprint, or nil.
func (s *GormStorage) FindResultByFingerprint(ctx context.Context, fingerprint string) (*core.ScreeningResult, error) {
	if fingerprint == "" {
		return nil, nil
	}
	var result core.ScreeningResult
	err := s.db.WithContext(ctx).
		First(&result, "fingerprint = ?", fingerprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResultsCompletedSince returns results created after the given time,
// oldest first, for export consumers.
func (s *GormStorage) ListResultsCompletedSince(ctx context.Context, since time.Time, limit int) ([]*core.ScreeningResult, error) {
	var results []*core.ScreeningResult
	err := s.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
