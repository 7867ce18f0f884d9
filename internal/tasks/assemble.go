package tasks

import (
	"time"

	"github.com/desertthunder/tunename/internal/models"
)

// AssemblePlaylist interleaves each contact's songs into a playlist of at most n entries.
//
// Contacts take turns in the order given. On its turn a contact contributes the first of its
// songs not already in the playlist; a contact with nothing left to contribute is exhausted and
// skipped from then on. Assembly stops at n entries or when every contact is exhausted.
func AssemblePlaylist(name string, found []models.ContactSongs, n int) models.Playlist {
	playlist := models.Playlist{
		Name:      name,
		Entries:   make([]models.PlaylistEntry, 0, max(n, 0)),
		CreatedAt: time.Now().UTC(),
	}

	used := make(map[string]bool)
	cursors := make([]int, len(found))
	done := make([]bool, len(found))
	exhausted := 0

	for len(playlist.Entries) < n && exhausted < len(found) {
		for i, cs := range found {
			if len(playlist.Entries) >= n {
				break
			}
			if done[i] {
				continue
			}

			for cursors[i] < len(cs.Songs) && used[cs.Songs[cursors[i]].Key()] {
				cursors[i]++
			}
			if cursors[i] == len(cs.Songs) {
				done[i] = true
				exhausted++
				continue
			}

			song := cs.Songs[cursors[i]]
			cursors[i]++
			used[song.Key()] = true
			playlist.Entries = append(playlist.Entries, models.PlaylistEntry{Song: song, Contact: cs.Contact})
		}
	}

	return playlist
}
