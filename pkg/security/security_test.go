package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeErrorMessage_StripsControlCharacters(t *testing.T) {
	assert.Equal(t, "ab", SanitizeErrorMessage("a\x00\x01b"))
	assert.Equal(t, "a\nb\tc", SanitizeErrorMessage("a\nb\tc"), "whitespace survives")
	assert.Equal(t, "", SanitizeErrorMessage(""))
}

func TestSanitizeErrorMessage_TruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", MaxErrorMessageLength*2)
	got := SanitizeErrorMessage(long)
	assert.Len(t, got, MaxErrorMessageLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSanitizeErrorMessage_MultibyteSafe(t *testing.T) {
	long := strings.Repeat("候", MaxErrorMessageLength+10)
	got := SanitizeErrorMessage(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, MaxErrorMessageLength, len([]rune(got)))
}

func TestClampAttempts(t *testing.T) {
	assert.Equal(t, 1, ClampAttempts(0))
	assert.Equal(t, 5, ClampAttempts(5))
	assert.Equal(t, MaxRetryAttempts, ClampAttempts(1000))
}

func TestClampWorkers(t *testing.T) {
	assert.Equal(t, 1, ClampWorkers(-3))
	assert.Equal(t, 16, ClampWorkers(16))
	assert.Equal(t, MaxWorkerCount, ClampWorkers(100000))
}

func TestClampChunkSize(t *testing.T) {
	assert.Equal(t, 1, ClampChunkSize(0))
	assert.Equal(t, 100, ClampChunkSize(100))
	assert.Equal(t, MaxChunkSize, ClampChunkSize(1<<20))
}
