package simulate_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/app/simulate"
)

func TestNewService(t *testing.T) {
	_, err := simulate.NewService(simulate.ServiceConfig{})
	assert.Error(t, err)

	_, err = simulate.NewService(simulate.ServiceConfig{Dir: t.TempDir()})
	assert.NoError(t, err)
}

func TestServiceRun(t *testing.T) {
	dir := t.TempDir()

	svc, err := simulate.NewService(simulate.ServiceConfig{
		Dir:   dir,
		Speed: 1000,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, svc.Run(ctx))

	logData, err := os.ReadFile(filepath.Join(dir, "logs", "latest.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	assert.Len(t, lines, 8)
	assert.Contains(t, lines[0], "Loaded 0 advancements")
	assert.Contains(t, lines[7], "[Free the End]")

	snapData, err := os.ReadFile(filepath.Join(dir, "speedrunigt", "latest_world"))
	require.NoError(t, err)
	var times map[string]int64
	require.NoError(t, json.Unmarshal(snapData, &times))
	assert.Equal(t, int64(145000), times["nether"])
	assert.Equal(t, int64(490000), times["finish"])
	assert.Equal(t, int64(495000), times["finishRta"])
}

func TestServiceRunCancelled(t *testing.T) {
	dir := t.TempDir()

	svc, err := simulate.NewService(simulate.ServiceConfig{Dir: dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))

	_, err = os.Stat(filepath.Join(dir, "logs", "latest.log"))
	assert.True(t, os.IsNotExist(err))
}
