// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tunename/internal/models"
)

// MockSearcher is a test double for services.SongSearcher.
//
// Results are looked up by search term. Terms without an entry return no songs.
// Safe for concurrent use.
type MockSearcher struct {
	Songs  map[string][]models.Song
	Errors map[string]error
	Delays map[string]time.Duration // Search blocks this long or until the context ends

	mu    sync.Mutex
	calls []string
}

// NewMockSearcher creates a MockSearcher with empty lookup tables.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{
		Songs:  map[string][]models.Song{},
		Errors: map[string]error{},
		Delays: map[string]time.Duration{},
	}
}

func (m *MockSearcher) SearchSongs(ctx context.Context, term string, prefs models.SongPreferences, count int) ([]models.Song, error) {
	m.mu.Lock()
	m.calls = append(m.calls, term)
	delay := m.Delays[term]
	err := m.Errors[term]
	songs := m.Songs[term]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if count < len(songs) {
		songs = songs[:count]
	}
	return slices.Clone(songs), nil
}

// Calls returns the searched terms in call order.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many times term was searched.
func (m *MockSearcher) CallCount(term string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == term {
			n++
		}
	}
	return n
}

// MockContactSource is a test double for tasks.ContactSource.
type MockContactSource struct {
	All      []models.Contact
	Filtered []models.Contact
	Err      error
}

func (m *MockContactSource) Retrieve(ctx context.Context, filtered bool) ([]models.Contact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if filtered {
		return slices.Clone(m.Filtered), nil
	}
	return slices.Clone(m.All), nil
}

// Contacts satisfies contacts.Store.
func (m *MockContactSource) Contacts(filtered bool) ([]models.Contact, error) {
	return m.Retrieve(context.Background(), filtered)
}

// MockPublisher is a test double for services.PlaylistPublisher.
type MockPublisher struct {
	Location  string
	Err       error
	Published []*models.Playlist
}

func (m *MockPublisher) PublishPlaylist(ctx context.Context, playlist *models.Playlist) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Published = append(m.Published, playlist)
	return m.Location, nil
}

func (m *MockPublisher) Name() string { return "mock" }

// MockHistory is a test double for tasks.PlaylistHistory.
type MockHistory struct {
	Err       error
	Archived  []models.Playlist
	Locations map[string]string
}

func (m *MockHistory) Archive(playlist *models.Playlist, targetCount int) error {
	if m.Err != nil {
		return m.Err
	}
	playlist.ID = fmt.Sprintf("pl-%d", len(m.Archived)+1)
	m.Archived = append(m.Archived, *playlist)
	return nil
}

func (m *MockHistory) SetLocation(id, location string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Locations == nil {
		m.Locations = map[string]string{}
	}
	m.Locations[id] = location
	return nil
}

// Contacts builds contacts with sequential IDs c1, c2, ... from first names.
func Contacts(firstNames ...string) []models.Contact {
	contacts := make([]models.Contact, len(firstNames))
	for i, name := range firstNames {
		contacts[i] = models.Contact{
			ID:        fmt.Sprintf("c%d", i+1),
			FirstName: name,
			FullName:  name + " Tester",
		}
	}
	return contacts
}

// Songs builds n distinct songs titled after name.
func Songs(name string, n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range n {
		id := fmt.Sprintf("%s-%d", name, i+1)
		songs[i] = models.Song{
			ID:         id,
			URI:        "spotify:track:" + id,
			Title:      fmt.Sprintf("%s Song %d", name, i+1),
			Artist:     "Artist " + name,
			DurationMS: 180_000,
		}
	}
	return songs
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
