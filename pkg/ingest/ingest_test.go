package ingest

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
	"github.com/starORAIT/HRAgent/pkg/schedule"
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

// fakeSource returns a fixed set of messages on every fetch.
type fakeSource struct {
	messages []core.Message
	err      error
	limits   []int
}

func (f *fakeSource) Fetch(ctx context.Context, limit int) ([]core.Message, error) {
	f.limits = append(f.limits, limit)
	return f.messages, f.err
}

func message(sourceID, content string) core.Message {
	return core.Message{
		SourceID:    sourceID,
		Mailbox:     "hr@example.com",
		Subject:     "application",
		FromAddress: "candidate@example.com",
		Content:     content,
		ReceivedAt:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestIngest_StoresNewItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	source := &fakeSource{messages: []core.Message{
		message("msg-1", "resume one"),
		message("msg-2", "resume two"),
	}}

	r := NewRunner(s, source, schedule.Every(time.Minute), 50, nil)
	inserted, err := r.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, []int{50}, source.limits, "fetch honors the configured limit")

	items, err := s.ListEligible(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, core.StatusNew, items[0].Status)
	assert.Equal(t, dedup.Fingerprint("resume one"), items[0].Fingerprint,
		"fingerprint computed once at ingestion")
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC).Unix(),
		items[0].ReceivedAt.Unix())
}

func TestIngest_RefetchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	source := &fakeSource{messages: []core.Message{message("msg-1", "resume one")}}

	r := NewRunner(s, source, schedule.Every(time.Minute), 50, nil)

	inserted, err := r.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = r.Ingest(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted, "second fetch of the same message stores nothing")

	var count int64
	require.NoError(t, s.DB().Model(&core.WorkItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIngest_EmptyContentGetsNoFingerprint(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	source := &fakeSource{messages: []core.Message{message("msg-1", "   \n  ")}}

	r := NewRunner(s, source, schedule.Every(time.Minute), 50, nil)
	_, err := r.Ingest(ctx)
	require.NoError(t, err)

	items, err := s.ListEligible(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Fingerprint, "unextractable content is never deduplicated")
}

func TestIngest_SourceError(t *testing.T) {
	s := newTestStore(t)
	cause := errors.New("imap down")
	r := NewRunner(s, &fakeSource{err: cause}, schedule.Every(time.Minute), 50, nil)

	_, err := r.Ingest(context.Background())
	assert.ErrorIs(t, err, cause)
}
