package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/snapshot"
)

func writeSnapshot(t *testing.T, dir, content string, modTime time.Time) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "latest_world")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestReader_Read(t *testing.T) {
	tests := map[string]struct {
		content  string
		expOK    bool
		expTimes map[model.Milestone]time.Duration
	}{
		"flat legacy keys should parse into milestone times": {
			content: `{"nether": 145000, "bastion": 195000, "netherRta": 150000}`,
			expOK:   true,
			expTimes: map[model.Milestone]time.Duration{
				model.MilestoneNether:  145 * time.Second,
				model.MilestoneBastion: 195 * time.Second,
			},
		},
		"timeline aliases should canonicalize onto the same milestones": {
			content: `{"enter_nether": 145000, "enter_fortress": 240000, "portal_no_1": 285000, "credits": 490000}`,
			expOK:   true,
			expTimes: map[model.Milestone]time.Duration{
				model.MilestoneNether:      145 * time.Second,
				model.MilestoneFortress:    240 * time.Second,
				model.MilestoneFirstPortal: 285 * time.Second,
				model.MilestoneFinish:      490 * time.Second,
			},
		},
		"unknown keys and null values should be dropped silently": {
			content: `{"enter_nether": 145000, "second_portal": 300000, "bastion": null}`,
			expOK:   true,
			expTimes: map[model.Milestone]time.Duration{
				model.MilestoneNether: 145 * time.Second,
			},
		},
		"a snapshot with zero recognized entries should be no data": {
			content: `{"who_knows": 1}`,
			expOK:   false,
		},
		"a partial write should be no data, not an error": {
			content: `{"enter_nether": 1450`,
			expOK:   false,
		},
		"an empty file should be no data": {
			content: "",
			expOK:   false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeSnapshot(t, filepath.Join(root, "speedrunigt"), test.content, time.Now())

			reader, err := snapshot.NewReader(snapshot.ReaderConfig{Root: root})
			require.NoError(t, err)

			times, ok := reader.Read()

			assert.Equal(t, test.expOK, ok)
			if test.expOK {
				assert.Equal(t, test.expTimes, times)
			}
		})
	}
}

func TestReader_PicksNewestSnapshot(t *testing.T) {
	root := t.TempDir()

	// An older, further-progressed snapshot from an abandoned save must
	// lose against the fresher one.
	writeSnapshot(t, filepath.Join(root, "instances", "old", ".minecraft", "speedrunigt"),
		`{"enter_end": 420000}`, time.Now().Add(-time.Hour))
	writeSnapshot(t, filepath.Join(root, "instances", "current", ".minecraft", "speedrunigt"),
		`{"enter_nether": 145000}`, time.Now())

	reader, err := snapshot.NewReader(snapshot.ReaderConfig{Root: root})
	require.NoError(t, err)

	times, ok := reader.Read()

	require.True(t, ok)
	assert.Equal(t, map[model.Milestone]time.Duration{
		model.MilestoneNether: 145 * time.Second,
	}, times)
}

func TestReader_NoSnapshotIsNoData(t *testing.T) {
	reader, err := snapshot.NewReader(snapshot.ReaderConfig{Root: t.TempDir()})
	require.NoError(t, err)

	times, ok := reader.Read()

	assert.False(t, ok)
	assert.Nil(t, times)
}

func TestPoller_SkipsUnchangedData(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "speedrunigt")
	writeSnapshot(t, dir, `{"enter_nether": 145000}`, time.Now())

	reader, err := snapshot.NewReader(snapshot.ReaderConfig{Root: root})
	require.NoError(t, err)

	var calls []map[model.Milestone]time.Duration
	poller, err := snapshot.NewPoller(snapshot.PollerConfig{
		Reader:  reader,
		Handler: func(times map[model.Milestone]time.Duration) { calls = append(calls, times) },
	})
	require.NoError(t, err)

	poller.Poll()
	poller.Poll() // same data, no second call
	require.Len(t, calls, 1)

	writeSnapshot(t, dir, `{"enter_nether": 145000, "enter_bastion": 195000}`, time.Now())
	poller.Poll()
	require.Len(t, calls, 2)
	assert.Equal(t, map[model.Milestone]time.Duration{
		model.MilestoneNether:  145 * time.Second,
		model.MilestoneBastion: 195 * time.Second,
	}, calls[1])
}
