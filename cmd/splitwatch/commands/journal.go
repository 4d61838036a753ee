package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	appjournal "github.com/mcsr-tools/splitwatch/internal/app/journal"
	"github.com/mcsr-tools/splitwatch/internal/printer"
	"github.com/mcsr-tools/splitwatch/internal/storage/sqlite"
)

type JournalCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewJournalCommand returns the journal command.
func NewJournalCommand(rootCmd *RootCommand, app *kingpin.Application) *JournalCommand {
	c := &JournalCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("journal", "Print the most recently recorded transitions.")
	c.Cmd.Flag("limit", "Maximum number of transitions to print.").Default("50").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c JournalCommand) Name() string { return c.Cmd.FullCommand() }

func (c JournalCommand) Run(ctx context.Context) error {
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

	trs, err := svc.List(ctx, appjournal.ListOptions{Limit: c.limit})
	if err != nil {
		return fmt.Errorf("could not list transitions: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintTransitions(trs); err != nil {
		return fmt.Errorf("could not print transitions: %w", err)
	}

	return nil
}
