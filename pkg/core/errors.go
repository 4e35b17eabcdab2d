package core

import (
	"errors"
	"fmt"
)

var (
	// ErrClaimLost means another worker claimed the item first. Benign;
	// the losing worker abandons the item without marking anything.
	ErrClaimLost = errors.New("hragent: item already claimed by another worker")

	// ErrDuplicateItem means an item with the same source id and mailbox
	// already exists. Ingestion suppresses the duplicate.
	ErrDuplicateItem = errors.New("hragent: duplicate item for source id")

	// ErrItemNotProcessing means a finalize transition found the item no
	// longer in PROCESSING, typically because a stall sweep reclaimed it.
	ErrItemNotProcessing = errors.New("hragent: item is not in processing state")
)

// TransientKind classifies a TransientDependencyError for backoff policy.
type TransientKind int

const (
	// KindConnectivity covers network/transport failures; retried after a
	// fixed short wait.
	KindConnectivity TransientKind = iota
	// KindRateLimit covers explicit throttling signals; retried after a
	// capped exponential backoff.
	KindRateLimit
	// KindGateway covers 5xx/bad-gateway responses; retried without an
	// extra sleep, the escalating attempt timeout already slows the loop.
	KindGateway
)

func (k TransientKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindRateLimit:
		return "rate_limit"
	case KindGateway:
		return "gateway"
	}
	return "unknown"
}

// TransientError indicates a dependency failure worth retrying.
type TransientError struct {
	Kind TransientKind
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient (%s): %v", e.Kind, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps an error as a retryable dependency failure.
func Transient(kind TransientKind, err error) error {
	return &TransientError{Kind: kind, Err: err}
}

// MalformedResponseError indicates the dependency replied but the content
// is unusable. Not retried within the same attempt loop; the item is
// marked FAILED and becomes eligible again next cycle.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Malformed wraps an error as an unusable dependency response.
func Malformed(err error) error {
	return &MalformedResponseError{Err: err}
}

// OutOfScopeError is not a real failure: classification decided the item
// is not a target item. The coordinator routes it to SKIPPED.
type OutOfScopeError struct {
	Reason string
}

func (e *OutOfScopeError) Error() string {
	return fmt.Sprintf("out of scope: %s", e.Reason)
}

// OutOfScope marks an item as not a target item.
func OutOfScope(reason string) error {
	return &OutOfScopeError{Reason: reason}
}

// ExhaustedRetriesError is raised by the resilient caller after giving up.
type ExhaustedRetriesError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("exhausted %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Err
}
