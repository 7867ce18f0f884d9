package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI, building a playlist right away.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunename-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	prefs, err := r.buildPreferences(cmd)
	if err != nil {
		return err
	}

	builder, err := r.playlistBuilder(builderOpts{archive: true})
	if err != nil {
		return err
	}

	publisher, err := r.playlistPublisher()
	if err != nil {
		r.logger.Info("saving to Spotify disabled", "error", err)
	}

	model := ui.NewModel(ctx, builder, publisher, prefs)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
