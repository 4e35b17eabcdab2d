package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starORAIT/HRAgent/pkg/core"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\t b\n\nc  "))
	assert.Equal(t, "", Normalize("   \t\n  "))
	assert.Equal(t, "unchanged", Normalize("unchanged"))
}

func TestFingerprint_StableAcrossFormatting(t *testing.T) {
	a := Fingerprint("John Doe\nSenior Engineer\n10 years")
	b := Fingerprint("John  Doe Senior\tEngineer 10 years")
	assert.Equal(t, a, b, "formatting-only differences share a fingerprint")

	c := Fingerprint("Jane Doe Senior Engineer 10 years")
	assert.NotEqual(t, a, c)
}

func TestFingerprint_EmptyContent(t *testing.T) {
	assert.Empty(t, Fingerprint(""))
	assert.Empty(t, Fingerprint("   \n\t  "))
}

// fingerprintStore stubs the single Store read Resolve needs.
type fingerprintStore struct {
	core.Store
	result *core.ScreeningResult
}

func (s *fingerprintStore) FindResultByFingerprint(ctx context.Context, fingerprint string) (*core.ScreeningResult, error) {
	if s.result != nil && s.result.Fingerprint == fingerprint {
		return s.result, nil
	}
	return nil, nil
}

func TestResolve_NoExistingResult(t *testing.T) {
	d := New(&fingerprintStore{})

	outcome, err := d.Resolve(context.Background(), "fp-1")
	require.NoError(t, err)
	assert.Equal(t, ResolutionNew, outcome.Resolution)
}

func TestResolve_ExistingResultReplaced(t *testing.T) {
	d := New(&fingerprintStore{
		result: &core.ScreeningResult{ID: 7, Fingerprint: "fp-1", CreatedAt: time.Now()},
	})

	outcome, err := d.Resolve(context.Background(), "fp-1")
	require.NoError(t, err)
	assert.Equal(t, ResolutionReplace, outcome.Resolution)
	assert.EqualValues(t, 7, outcome.ExistingID)
}

func TestResolve_EmptyFingerprintAlwaysNew(t *testing.T) {
	d := New(&fingerprintStore{
		result: &core.ScreeningResult{ID: 7, Fingerprint: ""},
	})

	outcome, err := d.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ResolutionNew, outcome.Resolution, "empty fingerprints never deduplicate")
}
