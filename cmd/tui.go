package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tunesift/tunesift/internal/shared"
	"github.com/tunesift/tunesift/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing recommendations.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.similarity == nil {
		return fmt.Errorf("%w: lastfm api key not configured", shared.ErrMissingCredentials)
	}
	if err := r.openDatabase(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunesift-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, r.favorites, r.feedback, r.history, int(cmd.Int("limit")))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive recommendation browser",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of recommendations",
				Value:   20,
			},
		},
		Action: r.TUI,
	}
}
