package core

import (
	"time"
)

// ItemStatus represents the current state of a work item.
type ItemStatus string

const (
	StatusNew        ItemStatus = "NEW"
	StatusProcessing ItemStatus = "PROCESSING"
	StatusCompleted  ItemStatus = "COMPLETED"
	StatusFailed     ItemStatus = "FAILED"
	StatusSkipped    ItemStatus = "SKIPPED" // Classified as not a resume
)

// WorkItem is one unit of inbound content tracked through the lifecycle.
//
// Items are created once by ingestion in state NEW, mutated exclusively
// through the claim/finalize protocol, and never deleted; the status field
// is the audit trail. UpdatedAt is refreshed on every transition and is
// the sole input to stall detection.
type WorkItem struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	// SourceID is unique per mailbox; together they make ingestion idempotent.
	SourceID string `gorm:"size:200;not null;uniqueIndex:idx_items_source"`
	Mailbox  string `gorm:"size:200;not null;uniqueIndex:idx_items_source"`

	Subject     string `gorm:"size:500"`
	FromAddress string `gorm:"size:200"`
	Content     string `gorm:"type:text"` // normalized extracted text

	// Fingerprint is a hash of the normalized content, empty until
	// extraction succeeds. Empty fingerprints are never deduplicated.
	Fingerprint string `gorm:"index;size:32"`

	AttachmentRef string `gorm:"type:text"` // object-storage URL, set by ingestion

	Status       ItemStatus `gorm:"index;size:20;default:'NEW'"`
	ErrorMessage string     `gorm:"type:text"`
	ResultID     *uint      `gorm:"index"`

	ReceivedAt time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"index;autoUpdateTime"`
}

// Eligible reports whether the item can be claimed for processing.
func (i *WorkItem) Eligible() bool {
	return i.Status == StatusNew || i.Status == StatusFailed
}
