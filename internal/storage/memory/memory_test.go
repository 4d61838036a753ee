package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/storage/memory"
)

func TestJournal_RecordAndList(t *testing.T) {
	ctx := context.Background()

	j, err := memory.NewJournal(memory.JournalConfig{})
	require.NoError(t, err)

	for _, m := range []model.Milestone{model.MilestoneNether, model.MilestoneBastion, model.MilestoneFortress} {
		require.NoError(t, j.RecordTransition(ctx, model.Transition{
			RunID: "run-1", Kind: model.EventKindAdvance,
			Source: model.EventSourceStream, Milestone: m,
			At: time.Now(),
		}))
	}

	got, err := j.ListTransitions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.MilestoneFortress, got[0].Milestone)
	assert.Equal(t, model.MilestoneBastion, got[1].Milestone)

	all, err := j.ListTransitions(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = j.ListTransitions(ctx, 0)
	assert.Error(t, err)
}
