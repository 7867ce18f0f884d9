package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.PlaylistEntry] to implement [list.Item].
type entryItem struct {
	position int
	entry    models.PlaylistEntry
}

func (i entryItem) FilterValue() string {
	return i.entry.Song.Title + " " + i.entry.Contact.DisplayName()
}

func (i entryItem) Title() string {
	return fmt.Sprintf("%d. %s", i.position, i.entry.Song.String())
}

// Description credits the contact, then the duration and album when known.
func (i entryItem) Description() string {
	parts := []string{"for " + i.entry.Contact.DisplayName()}
	if i.entry.Song.DurationMS > 0 {
		parts = append(parts, shared.FormatDuration(i.entry.Song.DurationMS))
	}
	if i.entry.Song.Album != "" {
		parts = append(parts, i.entry.Song.Album)
	}
	return strings.Join(parts, " • ")
}

func entryItems(playlist *models.Playlist) []list.Item {
	items := make([]list.Item, len(playlist.Entries))
	for i, e := range playlist.Entries {
		items[i] = entryItem{position: i + 1, entry: e}
	}
	return items
}
