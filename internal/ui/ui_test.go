package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
	th "github.com/desertthunder/tunename/internal/testing"
)

type mockBuilder struct {
	playlist *models.Playlist
	err      error
	builds   int
}

func (b *mockBuilder) Build(ctx context.Context, prefs models.PlaylistPreferences, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error) {
	b.builds++
	progress <- tasks.ProgressUpdate{Phase: tasks.LoadContacts, Message: "Loading contacts..."}
	if b.err != nil {
		return nil, b.err
	}
	return b.playlist, nil
}

func (b *mockBuilder) Publish(ctx context.Context, playlist *models.Playlist, publisher services.PlaylistPublisher, progress chan<- tasks.ProgressUpdate) error {
	location, err := publisher.PublishPlaylist(ctx, playlist)
	if err != nil {
		return err
	}
	playlist.Location = location
	return nil
}

func testPlaylist() *models.Playlist {
	contacts := th.Contacts("Alice", "Bob")
	return &models.Playlist{
		Name: "Tune That Name",
		Entries: []models.PlaylistEntry{
			{Song: th.Songs("Alice", 1)[0], Contact: contacts[0]},
			{Song: th.Songs("Bob", 1)[0], Contact: contacts[1]},
		},
	}
}

func newTestModel(builder Builder, publisher services.PlaylistPublisher) *Model {
	prefs := models.DefaultPlaylistPreferences()
	return NewModel(context.Background(), builder, publisher, prefs)
}

// drain runs cmd and feeds its messages back into the model until the build finishes.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for cmd != nil {
		msgCh := make(chan tea.Msg, 1)
		next := cmd
		go func() { msgCh <- next() }()

		select {
		case msg := <-msgCh:
			_, cmd = m.Update(msg)
			if out, ok := msg.(Msg); ok && out.kind == MsgBuildComplete {
				return
			}
		case <-deadline:
			t.Fatal("build did not complete")
		}
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel(t *testing.T) {
	t.Run("Starts in building view", func(t *testing.T) {
		m := newTestModel(&mockBuilder{playlist: testPlaylist()}, nil)
		if m.view != BuildingView {
			t.Errorf("view = %v, want BuildingView", m.view)
		}
		if !strings.Contains(m.View(), "Building Playlist") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("Build success", func(t *testing.T) {
		builder := &mockBuilder{playlist: testPlaylist()}
		m := newTestModel(builder, nil)
		drain(t, m, m.startBuild())

		if m.view != ResultView {
			t.Fatalf("view = %v, want ResultView", m.view)
		}
		if len(m.entries.Items()) != 2 {
			t.Errorf("expected 2 list items, got %d", len(m.entries.Items()))
		}
		if !strings.Contains(m.entries.Title, "2 of 10 songs") {
			t.Errorf("title = %q", m.entries.Title)
		}
	})

	t.Run("Build failure", func(t *testing.T) {
		builder := &mockBuilder{err: fmt.Errorf("%w: found 1 of 10", shared.ErrNotEnoughSongs)}
		m := newTestModel(builder, nil)
		drain(t, m, m.startBuild())

		if m.view != ErrorView {
			t.Fatalf("view = %v, want ErrorView", m.view)
		}
		view := m.View()
		if !strings.Contains(view, "found 1 of 10") || !strings.Contains(view, "Too few songs") {
			t.Errorf("unexpected error view:\n%s", view)
		}
	})

	t.Run("Progress updates", func(t *testing.T) {
		m := newTestModel(&mockBuilder{}, nil)
		summary := tasks.RoundSummary{Round: 1, Found: 3, Failed: 1, Pending: 2}
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.SearchRound, Message: "Round 1 done", Data: summary}))

		view := m.View()
		if !strings.Contains(view, "Round 1 done") {
			t.Errorf("progress message missing:\n%s", view)
		}
		if !strings.Contains(view, "3 contacts with songs, 1 failed searches, 2 still pending") {
			t.Errorf("round summary missing:\n%s", view)
		}
	})

	t.Run("Rebuild from error", func(t *testing.T) {
		builder := &mockBuilder{err: shared.ErrNoContacts}
		m := newTestModel(builder, nil)
		drain(t, m, m.startBuild())

		builder.err = nil
		builder.playlist = testPlaylist()
		m.Update(keyPress('r'))
		if m.view != BuildingView {
			t.Fatalf("view = %v, want BuildingView", m.view)
		}
		if m.err != nil {
			t.Error("rebuild should clear the error")
		}
		drain(t, m, m.waitForProgress())
		if m.view != ResultView {
			t.Errorf("view = %v, want ResultView", m.view)
		}
		if builder.builds != 2 {
			t.Errorf("builds = %d, want 2", builder.builds)
		}
	})

	t.Run("Rebuild ignored while building", func(t *testing.T) {
		m := newTestModel(&mockBuilder{}, nil)
		_, cmd := m.Update(keyPress('r'))
		if cmd != nil {
			t.Error("expected no command while building")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := newTestModel(&mockBuilder{}, nil)
		_, cmd := m.Update(keyPress('q'))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestPublish(t *testing.T) {
	t.Run("Save", func(t *testing.T) {
		publisher := &th.MockPublisher{Location: "spotify:playlist:abc"}
		m := newTestModel(&mockBuilder{playlist: testPlaylist()}, publisher)
		drain(t, m, m.startBuild())

		if !strings.Contains(m.View(), "save to Spotify") {
			t.Errorf("save key not offered:\n%s", m.View())
		}

		m.Update(keyPress('s'))
		if m.view != PublishingView {
			t.Fatalf("view = %v, want PublishingView", m.view)
		}
		m.Update(m.publish()())

		if m.view != ResultView {
			t.Errorf("view = %v, want ResultView", m.view)
		}
		if m.location != "spotify:playlist:abc" {
			t.Errorf("location = %q", m.location)
		}
		if len(publisher.Published) != 1 {
			t.Errorf("expected 1 publish, got %d", len(publisher.Published))
		}
		if m.canSave() {
			t.Error("a saved playlist should not be saved again")
		}
	})

	t.Run("Save failure", func(t *testing.T) {
		publisher := &th.MockPublisher{Err: errors.New("quota exceeded")}
		m := newTestModel(&mockBuilder{playlist: testPlaylist()}, publisher)
		drain(t, m, m.startBuild())

		m.Update(keyPress('s'))
		m.Update(m.publish()())
		if !strings.Contains(m.notice, "quota exceeded") {
			t.Errorf("notice = %q", m.notice)
		}
		if !m.canSave() {
			t.Error("a failed save can be retried")
		}
	})

	t.Run("No publisher", func(t *testing.T) {
		m := newTestModel(&mockBuilder{playlist: testPlaylist()}, nil)
		drain(t, m, m.startBuild())

		m.Update(keyPress('s'))
		if m.view != ResultView {
			t.Errorf("view = %v, want ResultView", m.view)
		}
	})
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "No contacts", err: shared.ErrNoContacts, want: "contacts import"},
		{name: "Unavailable", err: shared.ErrContactsUnavailable, want: "could not be read"},
		{name: "Not enough songs", err: shared.ErrNotEnoughSongs, want: "Too few songs"},
		{name: "Too many errors", err: fmt.Errorf("%w: 5 failed", shared.ErrPlaylistGeneral), want: "kept failing"},
		{name: "Other", err: errors.New("boom"), want: "Press r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("Hint() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestEntryItem(t *testing.T) {
	song := th.Songs("Alice", 1)[0]
	song.Album = "Debut"
	item := entryItem{position: 3, entry: models.PlaylistEntry{Song: song, Contact: th.Contacts("Alice")[0]}}

	if got := item.Title(); got != "3. Artist Alice - Alice Song 1" {
		t.Errorf("Title() = %q", got)
	}
	if got := item.Description(); got != "for Alice Tester • 3:00 • Debut" {
		t.Errorf("Description() = %q", got)
	}
	if !strings.Contains(item.FilterValue(), "Alice Tester") {
		t.Errorf("FilterValue() = %q", item.FilterValue())
	}
}
