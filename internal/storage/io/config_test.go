package io_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/model"
	storageio "github.com/mcsr-tools/splitwatch/internal/storage/io"
)

func TestConfigYAMLRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	repo := storageio.NewConfigYAMLRepository()

	cfg := model.Config{
		DiscordClientID:      "123456789012345678",
		MinecraftDir:         "/home/runner/.minecraft",
		LogPollInterval:      100 * time.Millisecond,
		SnapshotPollInterval: time.Second,
	}
	require.NoError(t, repo.SaveConfig(ctx, path, cfg))

	got, err := repo.GetConfig(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfigYAMLRepository_GetConfig(t *testing.T) {
	ctx := context.Background()
	repo := storageio.NewConfigYAMLRepository()

	t.Run("missing file should return not found", func(t *testing.T) {
		_, err := repo.GetConfig(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("invalid duration should fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		raw := "discord_client_id: \"42\"\nlog_poll_interval: soon\n"
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		_, err := repo.GetConfig(ctx, path)
		assert.True(t, errors.Is(err, model.ErrNotValid))
	})

	t.Run("non-numeric client ID should fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("discord_client_id: my-app\n"), 0o600))

		_, err := repo.GetConfig(ctx, path)
		assert.True(t, errors.Is(err, model.ErrNotValid))
	})
}

func TestConfigYAMLRepository_SaveConfigValidates(t *testing.T) {
	repo := storageio.NewConfigYAMLRepository()

	err := repo.SaveConfig(context.Background(), filepath.Join(t.TempDir(), "config.yaml"), model.Config{})

	assert.True(t, errors.Is(err, model.ErrNotValid))
}
