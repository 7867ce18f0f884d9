package models

import (
	"fmt"
	"strings"
	"time"
)

// PlaylistEntry pairs a song with the contact whose name found it.
type PlaylistEntry struct {
	Song    Song    `json:"song"`
	Contact Contact `json:"contact"`
}

// Playlist is the result of a build.
//
// Location is set once the playlist has been saved somewhere addressable, e.g. a Spotify URI.
type Playlist struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Location  string          `json:"location,omitempty"`
	Entries   []PlaylistEntry `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// Songs returns the songs in playlist order.
func (p *Playlist) Songs() []Song {
	songs := make([]Song, len(p.Entries))
	for i, e := range p.Entries {
		songs[i] = e.Song
	}
	return songs
}

// Equal compares name, location and songs.
func (p *Playlist) Equal(other *Playlist) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Name != other.Name || p.Location != other.Location || len(p.Entries) != len(other.Entries) {
		return false
	}
	for i := range p.Entries {
		if p.Entries[i].Song != other.Entries[i].Song {
			return false
		}
	}
	return true
}

// ContactSongs is one contact's search results, in backend relevance order.
type ContactSongs struct {
	Contact Contact
	Songs   []Song
}

// ContactError records a failed search for a contact.
type ContactError struct {
	Contact Contact
	Err     error
}

func (e ContactError) Error() string {
	return fmt.Sprintf("search for %q failed: %v", e.Contact.SearchTerm(), e.Err)
}

func (e ContactError) Unwrap() error { return e.Err }

// PersistedPlaylist is a built [Playlist] stored in the local database.
type PersistedPlaylist struct {
	record
	playlist    Playlist
	targetCount int
	songCount   int
}

var _ Model = (*PersistedPlaylist)(nil)

// NewPersistedPlaylist wraps playlist for persistence; targetCount is the requested size.
func NewPersistedPlaylist(sequence int, playlist Playlist, targetCount int) *PersistedPlaylist {
	p := &PersistedPlaylist{
		record:      newRecord(sequence),
		playlist:    playlist,
		targetCount: targetCount,
		songCount:   len(playlist.Entries),
	}
	if !playlist.CreatedAt.IsZero() {
		p.SetCreatedAt(playlist.CreatedAt)
	}
	return p
}

// Playlist returns the stored playlist with its ID and timestamps filled in.
func (p *PersistedPlaylist) Playlist() Playlist {
	pl := p.playlist
	pl.ID = p.ID()
	pl.CreatedAt = p.CreatedAt()
	return pl
}

func (p *PersistedPlaylist) Name() string         { return p.playlist.Name }
func (p *PersistedPlaylist) Location() string     { return p.playlist.Location }
func (p *PersistedPlaylist) SongCount() int       { return p.songCount }
func (p *PersistedPlaylist) TargetCount() int     { return p.targetCount }
func (p *PersistedPlaylist) SetLocation(l string) { p.playlist.Location = l }
func (p *PersistedPlaylist) SetEntries(e []PlaylistEntry) {
	p.playlist.Entries = e
	p.songCount = len(e)
}

// SetSongCount records the stored size when entries are not loaded.
func (p *PersistedPlaylist) SetSongCount(n int) { p.songCount = n }

// Validate checks the playlist is named and not larger than requested.
func (p *PersistedPlaylist) Validate() error {
	if strings.TrimSpace(p.playlist.Name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.targetCount <= 0 {
		return fmt.Errorf("target count must be positive")
	}
	if p.songCount > p.targetCount {
		return fmt.Errorf("playlist has %d songs, more than the requested %d", p.songCount, p.targetCount)
	}
	return nil
}
