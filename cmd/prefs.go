package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) preferencesRepository() (*repositories.PreferencesRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewPreferencesRepository(db), nil
}

// applyPreferenceFlags overrides base with every preference flag the user set.
func applyPreferenceFlags(cmd *cli.Command, base models.PlaylistPreferences) (models.PlaylistPreferences, error) {
	prefs := base
	prefs.SongPreferences.Characteristics = append([]models.Characteristic(nil), base.SongPreferences.Characteristics...)

	if cmd.IsSet("songs") {
		prefs.NumberOfSongs = int(cmd.Int("songs"))
	}
	if cmd.IsSet("filter") {
		prefs.FilterContacts = cmd.Bool("filter")
	}
	if cmd.IsSet("characteristic") {
		prefs.SongPreferences.Characteristics = nil
		for _, name := range cmd.StringSlice("characteristic") {
			c, err := models.ParseCharacteristic(name)
			if err != nil {
				return prefs, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
			}
			prefs.SongPreferences.Characteristics = append(prefs.SongPreferences.Characteristics, c)
		}
	}
	if cmd.IsSet("genre") {
		prefs.SongPreferences.Genre = cmd.String("genre")
	}
	if cmd.IsSet("year-from") {
		prefs.SongPreferences.YearFrom = int(cmd.Int("year-from"))
	}
	if cmd.IsSet("year-to") {
		prefs.SongPreferences.YearTo = int(cmd.Int("year-to"))
	}
	return prefs, nil
}

// buildPreferences starts from the saved preferences (or defaults) and applies flags.
func (r *Runner) buildPreferences(cmd *cli.Command) (models.PlaylistPreferences, error) {
	repo, err := r.preferencesRepository()
	if err != nil {
		return models.PlaylistPreferences{}, err
	}
	base, err := repo.LoadOrDefault()
	if err != nil {
		return models.PlaylistPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return applyPreferenceFlags(cmd, base)
}

// PrefsShow prints the saved preferences, or the defaults when none are saved.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.preferencesRepository()
	if err != nil {
		return err
	}

	stored, err := repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	if stored == nil {
		r.logger.Info("no saved preferences, showing defaults")
		defaults := models.DefaultPlaylistPreferences()
		stored = &defaults
	}
	return r.writeJSON(stored, true)
}

// PrefsSet merges the given flags into the saved preferences.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	prefs, err := r.buildPreferences(cmd)
	if err != nil {
		return err
	}

	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	repo, err := r.preferencesRepository()
	if err != nil {
		return err
	}
	if err := repo.Save(prefs); err != nil {
		return err
	}

	r.writePlain("✓ Preferences saved\n")
	return r.writeJSON(prefs, true)
}

// PrefsReset removes the saved preferences.
func (r *Runner) PrefsReset(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.preferencesRepository()
	if err != nil {
		return err
	}
	if err := repo.Reset(); err != nil {
		return fmt.Errorf("failed to reset preferences: %w", err)
	}
	r.writePlain("✓ Preferences reset to defaults\n")
	return nil
}
