package main

import (
	"context"

	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host, port := r.config.Server.Host, r.config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}

	builder, err := r.playlistBuilder(builderOpts{archive: true})
	if err != nil {
		return err
	}

	publisher, err := r.playlistPublisher()
	if err != nil {
		r.logger.Warn("publishing disabled", "error", err)
	}

	srv := server.New(server.Options{
		Addr:        server.Addr(host, port),
		Builder:     builder,
		Preferences: repositories.NewPreferencesRepository(r.db),
		Playlists:   repositories.NewPlaylistRepository(r.db),
		Contacts:    repositories.NewContactRepository(r.db),
		Publisher:   publisher,
		Metrics:     r.metrics,
		Logger:      r.logger,
	})
	return srv.ListenAndServe(ctx)
}
