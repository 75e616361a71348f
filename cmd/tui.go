package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("log-file")
	if path == "" {
		path = r.config.Log.File
	}
	if path == "" {
		p, err := shared.DataPath("tui.log")
		if err != nil {
			return err
		}
		path = p
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	a, release, err := r.newApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	model := ui.NewModel(ctx, a)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
