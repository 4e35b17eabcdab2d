package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/dedup"
	"github.com/starORAIT/HRAgent/pkg/resilient"
	"github.com/starORAIT/HRAgent/pkg/storage"
)

func newTestStore(t *testing.T) *storage.GormStorage {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := storage.NewGormStorage(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func insertItem(t *testing.T, s *storage.GormStorage, sourceID, content string) *core.WorkItem {
	t.Helper()
	item := &core.WorkItem{
		SourceID:    sourceID,
		Mailbox:     "hr@example.com",
		Subject:     "resume",
		Content:     content,
		Fingerprint: dedup.Fingerprint(content),
		Status:      core.StatusNew,
		ReceivedAt:  time.Now(),
	}
	require.NoError(t, s.InsertItem(context.Background(), item))
	return item
}

// fastPolicy keeps retry waits negligible in tests.
func fastPolicy() resilient.Policy {
	return resilient.Policy{
		MaxAttempts:      3,
		BaseTimeout:      time.Second,
		ConnectivityWait: time.Millisecond,
		BackoffUnit:      time.Microsecond,
	}
}

type fakeClassifier struct {
	result core.Classification
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, item *core.WorkItem) (core.Classification, error) {
	return f.result, f.err
}

func inScope(label string) *fakeClassifier {
	return &fakeClassifier{result: core.Classification{InScope: true, Label: label, Channel: "direct"}}
}

type fakeScorer struct {
	calls int
	fn    func(call int) (*core.ScreeningResult, error)
}

func (f *fakeScorer) Score(ctx context.Context, content, label string) (*core.ScreeningResult, error) {
	f.calls++
	return f.fn(f.calls)
}

func constScorer(result *core.ScreeningResult) *fakeScorer {
	return &fakeScorer{fn: func(int) (*core.ScreeningResult, error) { return result, nil }}
}

func TestProcessChunk_Success(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume of jane doe")

	scorer := constScorer(&core.ScreeningResult{
		Name:           "Jane Doe",
		EducationScore: 12,
		TechnicalScore: 18,
		GrowthScore:    15,
		StartupScore:   10,
		TeamworkScore:  10,
	})
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{Total: 1, Succeeded: 1}, stats)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, got.Status)
	require.NotNil(t, got.ResultID)

	result, err := s.FindResultByFingerprint(ctx, item.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Backend Engineer", result.Position)
	assert.Equal(t, "direct", result.Channel)
	assert.Equal(t, 65, result.TotalScore)
	assert.True(t, result.Qualified)
}

func TestProcessChunk_OutOfScopeSkips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "quarterly newsletter")

	classifier := &fakeClassifier{result: core.Classification{InScope: false, Reason: "newsletter"}}
	scorer := constScorer(nil)
	c := New(s, classifier, scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{Total: 1, Skipped: 1}, stats)
	assert.Zero(t, scorer.calls, "out-of-scope items are never scored")

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSkipped, got.Status)
	assert.Equal(t, "newsletter", got.ErrorMessage)
}

func TestProcessChunk_ScoreExhaustionFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume text")

	scorer := &fakeScorer{fn: func(int) (*core.ScreeningResult, error) {
		return nil, core.Transient(core.KindGateway, errors.New("bad gateway"))
	}}
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{Total: 1, Failed: 1}, stats)
	assert.Equal(t, 3, scorer.calls, "full retry budget consumed")

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "exhausted")

	// Failed items stay eligible for the next cycle.
	eligible, err := s.ListEligible(ctx, 10)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
}

func TestProcessChunk_MalformedResponseFailsWithoutRetry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume text")

	scorer := &fakeScorer{fn: func(int) (*core.ScreeningResult, error) {
		return nil, core.Malformed(errors.New("truncated json"))
	}}
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{Total: 1, Failed: 1}, stats)
	assert.Equal(t, 1, scorer.calls, "malformed responses are not retried")
}

func TestProcessChunk_ScorerRecoversAfterTransientError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume text")

	scorer := &fakeScorer{fn: func(call int) (*core.ScreeningResult, error) {
		if call == 1 {
			return nil, core.Transient(core.KindRateLimit, errors.New("429"))
		}
		return &core.ScreeningResult{TechnicalScore: 20}, nil
	}}
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{Total: 1, Succeeded: 1}, stats)
	assert.Equal(t, 2, scorer.calls)
}

func TestProcessChunk_ClaimLostNotCounted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume text")

	// Another worker already holds the claim.
	require.NoError(t, s.Claim(ctx, item.ID))

	scorer := constScorer(&core.ScreeningResult{})
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{item})
	assert.Equal(t, core.BatchStats{}, stats, "a lost claim is not this worker's work")
	assert.Zero(t, scorer.calls)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusProcessing, got.Status, "other worker's claim untouched")
}

func TestProcessChunk_DuplicateResumeReplacesResult(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := "identical resume body"
	first := insertItem(t, s, "msg-1", content)
	second := insertItem(t, s, "msg-2", content)
	require.Equal(t, first.Fingerprint, second.Fingerprint)

	scores := []int{18, 7}
	scorer := &fakeScorer{fn: func(call int) (*core.ScreeningResult, error) {
		return &core.ScreeningResult{TechnicalScore: scores[call-1]}, nil
	}}
	c := New(s, inScope("Backend Engineer"), scorer, WithPolicy(fastPolicy()))

	stats := c.ProcessChunk(ctx, []*core.WorkItem{first, second})
	assert.Equal(t, core.BatchStats{Total: 2, Succeeded: 2}, stats)

	result, err := s.FindResultByFingerprint(ctx, first.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 7, result.TotalScore, "latest screening wins")
	assert.Equal(t, second.ID, result.SourceItemID)
}

func TestEvents_EmittedInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	item := insertItem(t, s, "msg-1", "resume text")

	c := New(s, inScope("Backend Engineer"),
		constScorer(&core.ScreeningResult{TechnicalScore: 20}),
		WithPolicy(fastPolicy()))
	events := c.Events()

	c.ProcessChunk(ctx, []*core.WorkItem{item})

	first := <-events
	claimed, ok := first.(*core.ItemClaimed)
	require.True(t, ok, "first event is the claim")
	assert.Equal(t, item.ID, claimed.Item.ID)
	assert.Equal(t, c.WorkerID(), claimed.WorkerID)

	second := <-events
	completed, ok := second.(*core.ItemCompleted)
	require.True(t, ok, "second event is the completion")
	assert.Equal(t, 20, completed.Result.TotalScore)
}

func TestNew_AppliesOptions(t *testing.T) {
	s := newTestStore(t)
	c := New(s, inScope("x"), constScorer(nil), WithWorkerID("worker-7"))
	assert.Equal(t, "worker-7", c.WorkerID())
}
