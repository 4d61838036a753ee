package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/storage/sqlite"
)

func newTestJournal(t *testing.T) *sqlite.Journal {
	t.Helper()

	j, err := sqlite.NewJournal(context.Background(), sqlite.JournalConfig{
		DBPath: filepath.Join(t.TempDir(), "journal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestNewJournal(t *testing.T) {
	t.Run("missing db path should fail", func(t *testing.T) {
		_, err := sqlite.NewJournal(context.Background(), sqlite.JournalConfig{})
		assert.Error(t, err)
	})

	t.Run("valid config should create schema", func(t *testing.T) {
		j := newTestJournal(t)

		ts, err := j.ListTransitions(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, ts)
	})
}

func TestJournal_RecordAndList(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	at := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)
	transitions := []model.Transition{
		{RunID: "run-1", Kind: model.EventKindReset, Source: model.EventSourceStream, Milestone: model.MilestoneNone, At: at},
		{RunID: "run-1", Kind: model.EventKindAdvance, Source: model.EventSourceStream, Milestone: model.MilestoneNether, At: at.Add(145 * time.Second)},
		{RunID: "run-1", Kind: model.EventKindEnrich, Source: model.EventSourceSnapshot, Milestone: model.MilestoneNether, Elapsed: 145 * time.Second, At: at.Add(146 * time.Second)},
	}
	for _, tr := range transitions {
		require.NoError(t, j.RecordTransition(ctx, tr))
	}

	got, err := j.ListTransitions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, model.EventKindEnrich, got[0].Kind)
	assert.Equal(t, model.MilestoneNether, got[0].Milestone)
	assert.Equal(t, 145*time.Second, got[0].Elapsed)
	assert.Equal(t, at.Add(146*time.Second), got[0].At)
	assert.Equal(t, model.EventKindReset, got[2].Kind)
}

func TestJournal_ListLimit(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordTransition(ctx, model.Transition{
			RunID: "run-1", Kind: model.EventKindAdvance,
			Source: model.EventSourceStream, Milestone: model.MilestoneNether,
			At: time.Now(),
		}))
	}

	got, err := j.ListTransitions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = j.ListTransitions(ctx, 0)
	assert.Error(t, err)
}
