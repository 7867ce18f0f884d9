package services

import (
	"context"

	"github.com/desertthunder/tunename/internal/models"
)

// SongSearcher looks up songs whose titles contain a search term.
type SongSearcher interface {
	// SearchSongs returns at most count songs whose titles contain term.
	// The result is ordered by the backend's preference and may be empty.
	SearchSongs(ctx context.Context, term string, prefs models.SongPreferences, count int) ([]models.Song, error)
}

// PlaylistPublisher saves a finished playlist to a music service.
type PlaylistPublisher interface {
	// PublishPlaylist creates the playlist remotely and returns its location (URI or URL).
	PublishPlaylist(ctx context.Context, playlist *models.Playlist) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Service is a music provider that can both search and publish.
type Service interface {
	SongSearcher
	PlaylistPublisher
}
