package core

import (
	"context"
)

// Classification is the outcome of content classification: whether the
// item is in scope for screening, and the position label it targets.
type Classification struct {
	InScope bool
	Label   string
	Channel string
	Reason  string // set when InScope is false
}

// Classifier decides whether a work item is a target item.
type Classifier interface {
	Classify(ctx context.Context, item *WorkItem) (Classification, error)
}

// Scorer evaluates extracted content against a position label and returns
// a structured result. Implementations signal failure classes through the
// core error types so the resilient caller can apply its policy.
type Scorer interface {
	Score(ctx context.Context, content, label string) (*ScreeningResult, error)
}

// Message is one normalized inbound message handed over by a Source.
// Content extraction and normalization happen upstream.
type Message struct {
	SourceID      string
	Mailbox       string
	Subject       string
	FromAddress   string
	Content       string
	AttachmentRef string
	ReceivedAt    int64 // unix seconds
}

// Source produces normalized inbound messages for ingestion. Mail
// retrieval and binary extraction live behind this interface.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]Message, error)
}

// Exporter consumes completed screening results. Read-only; export
// formatting and upload live behind this interface.
type Exporter interface {
	Export(ctx context.Context, results []*ScreeningResult) error
}
