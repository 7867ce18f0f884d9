package models

import "fmt"

// DefaultNumberOfSongs is the playlist size used when nothing else is configured.
const DefaultNumberOfSongs = 10

// PlaylistPreferences are the user's inputs to a playlist build.
type PlaylistPreferences struct {
	NumberOfSongs   int             `json:"number_of_songs"`
	FilterContacts  bool            `json:"filter_contacts"`
	SongPreferences SongPreferences `json:"song_preferences"`
}

// DefaultPlaylistPreferences returns ten popular songs drawn from every contact.
func DefaultPlaylistPreferences() PlaylistPreferences {
	return PlaylistPreferences{
		NumberOfSongs:   DefaultNumberOfSongs,
		FilterContacts:  false,
		SongPreferences: SongPreferences{Characteristics: []Characteristic{Popular}},
	}
}

// Validate checks the requested playlist size and song preferences.
func (p PlaylistPreferences) Validate() error {
	if p.NumberOfSongs <= 0 {
		return fmt.Errorf("number of songs must be positive, got %d", p.NumberOfSongs)
	}
	if err := p.SongPreferences.Validate(); err != nil {
		return fmt.Errorf("song preferences: %w", err)
	}
	return nil
}
