package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunename/internal/cache"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the config template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Add your Spotify client credentials, then run 'tunename setup database'.\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return err
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready: %s (%d migrations applied)\n", r.config.Database.Path, len(statuses))
	return nil
}

// SetupStatus reports what is configured and whether the database is migrated.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("tunename status")

	r.writePlain("Config:       %s\n", r.configLabel())
	r.writePlain("Spotify:      %s\n", check(r.config.HasSpotifyCredentials(), "client credentials set", "client credentials missing"))
	r.writePlain("Saving:       %s\n", check(r.config.Credentials.Spotify.AccessToken != "", "user token set", "no user token, --save unavailable"))

	backend := r.config.Cache.Backend
	if backend == "" {
		backend = cache.BackendNone
	}
	r.writePlain("Cache:        %s\n", backend)
	r.writePlain("Database:     %s\n", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		r.writePlain("              ✗ %v\n", err)
		return nil
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, s := range statuses {
		r.writePlain("  %04d %-28s %s\n", s.Version, s.Name, check(s.Applied, "applied", "pending"))
	}
	return nil
}

func check(ok bool, yes, no string) string {
	if ok {
		return "✓ " + yes
	}
	return "✗ " + no
}
