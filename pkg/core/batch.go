package core

import (
	"time"
)

// BatchStatus represents the state of one orchestration cycle.
type BatchStatus string

const (
	BatchRunning   BatchStatus = "RUNNING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
)

// Batch is the audit record of one orchestration cycle. It is created
// before dispatch, finalized after all chunks return, and never mutated
// afterward.
type Batch struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	BatchID string `gorm:"index;size:50"` // human-readable cycle identifier

	TotalCount   int `gorm:"default:0"`
	SuccessCount int `gorm:"default:0"`
	FailedCount  int `gorm:"default:0"`
	SkippedCount int `gorm:"default:0"`

	StartedAt  time.Time
	FinishedAt *time.Time

	Status    BatchStatus `gorm:"size:20;default:'RUNNING'"`
	CreatedAt time.Time   `gorm:"autoCreateTime"`
}
