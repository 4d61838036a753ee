package model

import (
	"fmt"
	"time"
)

// Config is the persisted user configuration, captured by the init
// wizard and loadable from YAML.
type Config struct {
	// DiscordClientID is the Discord application client ID used for the
	// rich presence handshake.
	DiscordClientID string
	// MinecraftDir is the .minecraft directory (or a MultiMC/Prism
	// instances root) to search under.
	MinecraftDir string
	// LogFile overrides the discovered logs/latest.log path.
	LogFile string
	// SpeedrunIGTDir overrides the discovered speedrunigt data directory.
	SpeedrunIGTDir string
	// LogPollInterval is the cadence of the log tail loop.
	LogPollInterval time.Duration
	// SnapshotPollInterval is the cadence of the snapshot poll loop.
	SnapshotPollInterval time.Duration
}

// Validate validates the user configuration.
func (c *Config) Validate() error {
	if c.DiscordClientID == "" {
		return fmt.Errorf("discord client ID is required: %w", ErrNotValid)
	}
	for _, r := range c.DiscordClientID {
		if r < '0' || r > '9' {
			return fmt.Errorf("discord client ID must be numeric: %w", ErrNotValid)
		}
	}

	if c.LogPollInterval < 0 || c.SnapshotPollInterval < 0 {
		return fmt.Errorf("poll intervals must not be negative: %w", ErrNotValid)
	}

	return nil
}
