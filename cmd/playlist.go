package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tunename/internal/formatter"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistBuild builds a playlist from the stored contacts and prints or writes it.
func (r *Runner) PlaylistBuild(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("open") && !cmd.Bool("save") {
		return fmt.Errorf("%w: --open needs --save", shared.ErrInvalidArgument)
	}

	prefs, err := r.buildPreferences(cmd)
	if err != nil {
		return err
	}

	builder, err := r.playlistBuilder(builderOpts{
		seed:    cmd.Uint64("seed"),
		seeded:  cmd.IsSet("seed"),
		archive: !cmd.Bool("no-history"),
	})
	if err != nil {
		return err
	}

	progress, wait := r.logProgress()
	playlist, err := builder.Build(ctx, prefs, progress)
	if err == nil && cmd.Bool("save") {
		err = r.publish(ctx, builder, playlist, progress)
	}
	close(progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("open") && playlist.Location != "" {
		if err := r.openBrowser(playlist.Location); err != nil {
			r.logger.Warn("could not open playlist", "location", playlist.Location, "error", err)
		}
	}
	return r.writePlaylist(playlist, format, cmd.String("output"))
}

func (r *Runner) publish(ctx context.Context, builder *tasks.PlaylistBuilder, playlist *models.Playlist, progress chan<- tasks.ProgressUpdate) error {
	publisher, err := r.playlistPublisher()
	if err != nil {
		return err
	}
	return builder.Publish(ctx, playlist, publisher, progress)
}

// logProgress returns a channel whose updates are logged until it is closed, and a
// function that waits for the logger to drain.
func (r *Runner) logProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()
	return progress, wg.Wait
}

func (r *Runner) writePlaylist(playlist *models.Playlist, format formatter.Format, path string) error {
	if path != "" {
		written, err := formatter.WriteExport(playlist, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("playlist written", "path", written, "format", format)
		r.writePlain("✓ %s (%d songs) written to %s\n", playlist.Name, playlist.Len(), written)
		return nil
	}

	data, err := formatter.Export(playlist, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) playlistRepository() (*repositories.PlaylistRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewPlaylistRepository(db), nil
}

// PlaylistList prints the build history, newest first.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.playlistRepository()
	if err != nil {
		return err
	}

	stored, err := repo.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	if len(stored) == 0 {
		r.writePlain("No playlists yet. Build one with 'tunename playlist build'.\n")
		return nil
	}
	return formatter.WriteHistory(r.output, stored)
}

// PlaylistShow prints one playlist from the history.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.playlistRepository()
	if err != nil {
		return err
	}

	stored, err := repo.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	playlist := stored.Playlist()
	return r.writePlaylist(&playlist, format, cmd.String("output"))
}
