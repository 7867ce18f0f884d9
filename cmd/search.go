package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs one song search for --term with the given song preferences.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	prefs, err := applyPreferenceFlags(cmd, models.PlaylistPreferences{})
	if err != nil {
		return err
	}
	if err := prefs.SongPreferences.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	searcher, err := r.songSearcher()
	if err != nil {
		return err
	}

	term := cmd.String("term")
	songs, err := searcher.SearchSongs(ctx, term, prefs.SongPreferences, int(cmd.Int("count")))
	if err != nil {
		return fmt.Errorf("search for %q failed: %w", term, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	if len(songs) == 0 {
		r.writePlain("No songs found for %q\n", term)
		return nil
	}

	r.writePlain("Songs for %q:\n", term)
	for i, s := range songs {
		r.writePlain("%2d. %s [%s]\n", i+1, s.String(), shared.FormatDuration(s.DurationMS))
	}
	return nil
}
