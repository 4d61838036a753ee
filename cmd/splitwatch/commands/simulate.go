package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mcsr-tools/splitwatch/internal/app/simulate"
)

type SimulateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dir   string
	speed float64
}

// NewSimulateCommand returns the simulate command.
func NewSimulateCommand(rootCmd *RootCommand, app *kingpin.Application) *SimulateCommand {
	c := &SimulateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("simulate", "Write a scripted fake run for testing the tracker without a live game.")
	c.Cmd.Flag("dir", "Fake instance directory (defaults to a temp dir).").StringVar(&c.dir)
	c.Cmd.Flag("speed", "Delay speed multiplier.").Default("1").Float64Var(&c.speed)

	return c
}

func (c SimulateCommand) Name() string { return c.Cmd.FullCommand() }

func (c SimulateCommand) Run(ctx context.Context) error {
	dir := c.dir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "splitwatch-simulate-*")
		if err != nil {
			return fmt.Errorf("could not create temp dir: %w", err)
		}
		c.rootCmd.Logger.Infof("Writing fake run to %s", dir)
	}

	svc, err := simulate.NewService(simulate.ServiceConfig{
		Dir:    dir,
		Speed:  c.speed,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx)
}
