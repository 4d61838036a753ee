package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mcsr-tools/splitwatch/internal/app/track"
	"github.com/mcsr-tools/splitwatch/internal/conventions"
	"github.com/mcsr-tools/splitwatch/internal/discovery"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
	"github.com/mcsr-tools/splitwatch/internal/presence/discord"
	"github.com/mcsr-tools/splitwatch/internal/presence/fake"
	storageio "github.com/mcsr-tools/splitwatch/internal/storage/io"
	"github.com/mcsr-tools/splitwatch/internal/storage/sqlite"
)

type TrackCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	logFile      string
	snapshotDir  string
	minecraftDir string
	clientID     string
	noPresence   bool
	noJournal    bool
	logPoll      time.Duration
	snapshotPoll time.Duration
}

// NewTrackCommand returns the track command.
func NewTrackCommand(rootCmd *RootCommand, app *kingpin.Application) *TrackCommand {
	c := &TrackCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("track", "Track the current run and publish it as Discord presence.")
	c.Cmd.Flag("log-file", "Game log file to tail (overrides discovery).").StringVar(&c.logFile)
	c.Cmd.Flag("snapshot-dir", "SpeedRunIGT data directory (overrides discovery).").StringVar(&c.snapshotDir)
	c.Cmd.Flag("minecraft-dir", "Minecraft directory to search under (overrides discovery).").StringVar(&c.minecraftDir)
	c.Cmd.Flag("client-id", "Discord application client ID (overrides configuration).").StringVar(&c.clientID)
	c.Cmd.Flag("no-presence", "Log renders instead of publishing to Discord.").BoolVar(&c.noPresence)
	c.Cmd.Flag("no-journal", "Disable transition journaling.").BoolVar(&c.noJournal)
	c.Cmd.Flag("log-poll", "Game log poll interval.").Default("100ms").DurationVar(&c.logPoll)
	c.Cmd.Flag("snapshot-poll", "Snapshot poll interval.").Default("1s").DurationVar(&c.snapshotPoll)

	return c
}

func (c TrackCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrackCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}

	logFile, snapshotDir, err := c.resolvePaths(cfg)
	if err != nil {
		return err
	}

	// Presence publisher.
	var publisher presence.Publisher
	if c.noPresence {
		publisher, err = fake.NewPublisher(fake.PublisherConfig{Logger: logger})
	} else {
		publisher, err = discord.NewClient(discord.ClientConfig{
			ClientID: cfg.DiscordClientID,
			Logger:   logger,
		})
	}
	if err != nil {
		return fmt.Errorf("could not create presence publisher: %w", err)
	}

	// Transition journal.
	svcCfg := track.ServiceConfig{
		LogFile:              logFile,
		SnapshotDir:          snapshotDir,
		LogPollInterval:      c.logPoll,
		SnapshotPollInterval: c.snapshotPoll,
		Publisher:            publisher,
		Logger:               logger,
	}
	if cfg.LogPollInterval > 0 {
		svcCfg.LogPollInterval = cfg.LogPollInterval
	}
	if cfg.SnapshotPollInterval > 0 {
		svcCfg.SnapshotPollInterval = cfg.SnapshotPollInterval
	}
	if !c.noJournal {
		journal, err := sqlite.NewJournal(ctx, sqlite.JournalConfig{
			DBPath: c.rootCmd.JournalPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create journal: %w", err)
		}
		svcCfg.Journal = journal
	}

	svc, err := track.NewService(svcCfg)
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx)
}

// loadConfig loads the persisted configuration, applies flag overrides
// and validates the result. Missing configuration files are fine as
// long as the client ID arrives some other way.
func (c TrackCommand) loadConfig(ctx context.Context) (model.Config, error) {
	repo := storageio.NewConfigYAMLRepository()
	cfg, err := repo.GetConfig(ctx, c.rootCmd.ConfigPath)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return cfg, fmt.Errorf("could not load configuration: %w", err)
	}

	if c.clientID != "" {
		cfg.DiscordClientID = c.clientID
	}
	if c.minecraftDir != "" {
		cfg.MinecraftDir = c.minecraftDir
	}
	if c.logFile != "" {
		cfg.LogFile = c.logFile
	}
	if c.snapshotDir != "" {
		cfg.SpeedrunIGTDir = c.snapshotDir
	}

	if c.noPresence && cfg.DiscordClientID == "" {
		// The fake publisher never handshakes, any ID satisfies validation.
		cfg.DiscordClientID = "0"
	}
	if cfg.DiscordClientID == "" {
		return cfg, fmt.Errorf("no Discord client ID configured, run `splitwatch init` first")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolvePaths turns the configuration into concrete log and snapshot
// paths, falling back to filesystem discovery.
func (c TrackCommand) resolvePaths(cfg model.Config) (logFile, snapshotDir string, err error) {
	logFile = cfg.LogFile
	snapshotDir = cfg.SpeedrunIGTDir
	if logFile != "" && snapshotDir != "" {
		return logFile, snapshotDir, nil
	}

	mcDir := cfg.MinecraftDir
	if mcDir == "" {
		var ok bool
		mcDir, ok = discovery.MinecraftDir()
		if !ok {
			return "", "", fmt.Errorf("could not locate a Minecraft directory, set one with `splitwatch init` or --minecraft-dir")
		}
		c.rootCmd.Logger.Debugf("Discovered Minecraft directory: %s", mcDir)
	}

	if logFile == "" {
		found, ok := discovery.GameLog(mcDir)
		if !ok {
			// Tailing tolerates a missing file, start on the expected path.
			found = filepath.Join(mcDir, filepath.FromSlash(conventions.GameLogRelPath))
		}
		logFile = found
	}

	if snapshotDir == "" {
		found, ok := discovery.SpeedrunIGTDir(mcDir)
		if !ok {
			found = filepath.Join(mcDir, conventions.SpeedrunIGTDirName)
		}
		snapshotDir = found
	}

	return logFile, snapshotDir, nil
}
