// Package security provides sanitization and limits for the screening engine.
package security

import (
	"strings"
	"unicode/utf8"
)

// Limits applied before values reach storage or worker pools.
const (
	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 2048

	// MaxRetryAttempts is the hard limit for resilient-caller attempts.
	MaxRetryAttempts = 20

	// MaxWorkerCount is the hard limit for orchestrator worker pools.
	MaxWorkerCount = 256

	// MaxChunkSize is the hard limit for items per chunk.
	MaxChunkSize = 10000
)

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
// Control characters other than whitespace are stripped.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}

// ClampAttempts ensures a retry attempt count is within limits.
func ClampAttempts(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxRetryAttempts {
		return MaxRetryAttempts
	}
	return n
}

// ClampWorkers ensures a worker count is within limits.
func ClampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxWorkerCount {
		return MaxWorkerCount
	}
	return n
}

// ClampChunkSize ensures a chunk size is within limits.
func ClampChunkSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxChunkSize {
		return MaxChunkSize
	}
	return n
}
