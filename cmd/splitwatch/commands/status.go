package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	appjournal "github.com/mcsr-tools/splitwatch/internal/app/journal"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/printer"
	"github.com/mcsr-tools/splitwatch/internal/storage/sqlite"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Print the most recently recorded run state.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	journal, err := sqlite.NewJournal(ctx, sqlite.JournalConfig{
		DBPath: c.rootCmd.JournalPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not open journal: %w", err)
	}

	svc, err := appjournal.NewService(appjournal.ServiceConfig{
		Journal: journal,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	status, err := svc.Latest(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return p.PrintMessage("No transitions recorded yet.")
	}
	if err != nil {
		return fmt.Errorf("could not read run state: %w", err)
	}

	if err := p.PrintStatus(status); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
