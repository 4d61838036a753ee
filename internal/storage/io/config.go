// Package io persists the user configuration as YAML.
package io

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// ConfigYAMLRepository loads and saves the user configuration from a
// YAML file.
type ConfigYAMLRepository struct{}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository() *ConfigYAMLRepository {
	return &ConfigYAMLRepository{}
}

// GetConfig loads the user configuration and returns a validated
// domain model.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Config{}, fmt.Errorf("config file %s: %w", path, model.ErrNotFound)
		}
		return model.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Config{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	mCfg, err := cfg.toModel()
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return mCfg, nil
}

// SaveConfig writes the user configuration, creating parent directories
// as needed.
func (r *ConfigYAMLRepository) SaveConfig(ctx context.Context, path string, cfg model.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(fromModel(cfg))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Config represents the YAML structure of the user configuration.
type Config struct {
	DiscordClientID      string `yaml:"discord_client_id"`
	MinecraftDir         string `yaml:"minecraft_dir,omitempty"`
	LogFile              string `yaml:"log_file,omitempty"`
	SpeedrunIGTDir       string `yaml:"speedrunigt_dir,omitempty"`
	LogPollInterval      string `yaml:"log_poll_interval,omitempty"`
	SnapshotPollInterval string `yaml:"snapshot_poll_interval,omitempty"`
}

func (c Config) toModel() (model.Config, error) {
	cfg := model.Config{
		DiscordClientID: c.DiscordClientID,
		MinecraftDir:    c.MinecraftDir,
		LogFile:         c.LogFile,
		SpeedrunIGTDir:  c.SpeedrunIGTDir,
	}

	var err error
	if cfg.LogPollInterval, err = parseInterval(c.LogPollInterval); err != nil {
		return model.Config{}, fmt.Errorf("log_poll_interval: %w", err)
	}
	if cfg.SnapshotPollInterval, err = parseInterval(c.SnapshotPollInterval); err != nil {
		return model.Config{}, fmt.Errorf("snapshot_poll_interval: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func fromModel(cfg model.Config) Config {
	c := Config{
		DiscordClientID: cfg.DiscordClientID,
		MinecraftDir:    cfg.MinecraftDir,
		LogFile:         cfg.LogFile,
		SpeedrunIGTDir:  cfg.SpeedrunIGTDir,
	}
	if cfg.LogPollInterval > 0 {
		c.LogPollInterval = cfg.LogPollInterval.String()
	}
	if cfg.SnapshotPollInterval > 0 {
		c.SnapshotPollInterval = cfg.SnapshotPollInterval.String()
	}
	return c
}

func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a duration: %w", s, model.ErrNotValid)
	}
	return d, nil
}
