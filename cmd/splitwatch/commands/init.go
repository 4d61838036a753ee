package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/huh"

	"github.com/mcsr-tools/splitwatch/internal/discovery"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/printer"
	storageio "github.com/mcsr-tools/splitwatch/internal/storage/io"
)

type InitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	clientID     string
	minecraftDir string
	noInput      bool
}

// NewInitCommand returns the init command.
func NewInitCommand(rootCmd *RootCommand, app *kingpin.Application) *InitCommand {
	c := &InitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("init", "Create the configuration file interactively.")
	c.Cmd.Flag("client-id", "Discord application client ID.").StringVar(&c.clientID)
	c.Cmd.Flag("minecraft-dir", "Minecraft directory to track.").StringVar(&c.minecraftDir)
	c.Cmd.Flag("no-input", "Skip the interactive form and use flag values only.").BoolVar(&c.noInput)

	return c
}

func (c InitCommand) Name() string { return c.Cmd.FullCommand() }

func (c InitCommand) Run(ctx context.Context) error {
	clientID := c.clientID
	mcDir := c.minecraftDir

	if mcDir == "" {
		if found, ok := discovery.MinecraftDir(); ok {
			mcDir = found
		}
	}

	if !c.noInput {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Discord application client ID").
					Description("Create an application at https://discord.com/developers/applications and paste its ID.").
					Value(&clientID).
					Validate(validateClientID),
				huh.NewInput().
					Title("Minecraft directory").
					Description("The .minecraft directory, or a MultiMC/Prism instances root.").
					Value(&mcDir),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("configuration form failed: %w", err)
		}
	}

	cfg := model.Config{
		DiscordClientID: clientID,
		MinecraftDir:    mcDir,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	repo := storageio.NewConfigYAMLRepository()
	if err := repo.SaveConfig(ctx, c.rootCmd.ConfigPath, cfg); err != nil {
		return fmt.Errorf("could not save configuration: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	return p.PrintMessage(fmt.Sprintf("Configuration written to %s", c.rootCmd.ConfigPath))
}

func validateClientID(s string) error {
	if s == "" {
		return fmt.Errorf("client ID is required")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("client ID must be numeric")
		}
	}
	return nil
}
