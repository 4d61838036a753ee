package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mcsr-tools/splitwatch/internal/app/diagnose"
	"github.com/mcsr-tools/splitwatch/internal/model"
	storageio "github.com/mcsr-tools/splitwatch/internal/storage/io"
)

type DiagnoseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	logFile     string
	matchedOnly bool
	interval    time.Duration
}

// NewDiagnoseCommand returns the diagnose command.
func NewDiagnoseCommand(rootCmd *RootCommand, app *kingpin.Application) *DiagnoseCommand {
	c := &DiagnoseCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("diagnose", "Print new game log lines as they arrive, for collecting trace data.")
	c.Cmd.Flag("log-file", "Game log file to tail (overrides discovery).").StringVar(&c.logFile)
	c.Cmd.Flag("matched-only", "Only print lines the rule table recognizes.").BoolVar(&c.matchedOnly)
	c.Cmd.Flag("interval", "Poll interval.").Default("100ms").DurationVar(&c.interval)

	return c
}

func (c DiagnoseCommand) Name() string { return c.Cmd.FullCommand() }

func (c DiagnoseCommand) Run(ctx context.Context) error {
	logFile := c.logFile
	if logFile == "" {
		// No Discord involved here, only the log path needs resolving.
		repo := storageio.NewConfigYAMLRepository()
		cfg, err := repo.GetConfig(ctx, c.rootCmd.ConfigPath)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		logFile, _, err = TrackCommand{rootCmd: c.rootCmd}.resolvePaths(cfg)
		if err != nil {
			return err
		}
	}

	svc, err := diagnose.NewService(diagnose.ServiceConfig{
		LogFile:     logFile,
		Interval:    c.interval,
		Out:         c.rootCmd.Stdout,
		MatchedOnly: c.matchedOnly,
		Logger:      c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx)
}
