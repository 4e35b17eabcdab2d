package core

import "time"

// Event is the interface for all pipeline events.
type Event interface {
	eventMarker()
}

// ItemClaimed is emitted when a worker wins the claim on an item.
type ItemClaimed struct {
	Item      *WorkItem
	WorkerID  string
	Timestamp time.Time
}

func (*ItemClaimed) eventMarker() {}

// ItemCompleted is emitted when an item finishes screening successfully.
type ItemCompleted struct {
	Item      *WorkItem
	Result    *ScreeningResult
	Duration  time.Duration
	Timestamp time.Time
}

func (*ItemCompleted) eventMarker() {}

// ItemFailed is emitted when processing an item fails.
type ItemFailed struct {
	Item      *WorkItem
	Error     error
	Timestamp time.Time
}

func (*ItemFailed) eventMarker() {}

// ItemSkipped is emitted when classification rules an item out of scope.
type ItemSkipped struct {
	Item      *WorkItem
	Reason    string
	Timestamp time.Time
}

func (*ItemSkipped) eventMarker() {}

// CycleFinished is emitted when the orchestrator finalizes a batch.
type CycleFinished struct {
	Batch     *Batch
	Stats     BatchStats
	Timestamp time.Time
}

func (*CycleFinished) eventMarker() {}
