package models

import (
	"fmt"
	"slices"
	"strings"
)

// Song is a catalog track returned by the search backend.
type Song struct {
	ID         string `json:"id"`
	URI        string `json:"uri,omitempty"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
	Popularity int    `json:"popularity,omitempty"`
	Explicit   bool   `json:"explicit,omitempty"`
}

// Key identifies the song for de-duplication: the catalog URI, or the ID when no URI is known.
func (s Song) Key() string {
	if s.URI != "" {
		return s.URI
	}
	return s.ID
}

// String renders "Artist - Title".
func (s Song) String() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Artist + " - " + s.Title
}

// Characteristic is a song attribute the search backend may honor.
type Characteristic string

const (
	Popular Characteristic = "popular" // Prefer well-known tracks
	Obscure Characteristic = "obscure" // Prefer lesser-known tracks
	Clean   Characteristic = "clean"   // Exclude explicit tracks
)

// ParseCharacteristic converts a name into a known [Characteristic].
func ParseCharacteristic(name string) (Characteristic, error) {
	switch c := Characteristic(strings.ToLower(strings.TrimSpace(name))); c {
	case Popular, Obscure, Clean:
		return c, nil
	default:
		return "", fmt.Errorf("unknown song characteristic %q", name)
	}
}

// SongPreferences constrain what the search backend returns.
//
// The playlist builder passes them through untouched.
type SongPreferences struct {
	Characteristics []Characteristic `json:"characteristics,omitempty"`
	Genre           string           `json:"genre,omitempty"`
	YearFrom        int              `json:"year_from,omitempty"`
	YearTo          int              `json:"year_to,omitempty"`
}

// Has reports whether c is one of the requested characteristics.
func (p SongPreferences) Has(c Characteristic) bool {
	return slices.Contains(p.Characteristics, c)
}

// Key returns a stable textual form, suitable for cache keys.
func (p SongPreferences) Key() string {
	names := make([]string, 0, len(p.Characteristics))
	for _, c := range p.Characteristics {
		names = append(names, string(c))
	}
	slices.Sort(names)
	names = slices.Compact(names)
	return fmt.Sprintf("%s|%s|%d-%d", strings.Join(names, ","), strings.ToLower(p.Genre), p.YearFrom, p.YearTo)
}

// Validate rejects contradictory preferences.
func (p SongPreferences) Validate() error {
	if p.Has(Popular) && p.Has(Obscure) {
		return fmt.Errorf("popular and obscure cannot both be requested")
	}
	if p.YearFrom < 0 || p.YearTo < 0 {
		return fmt.Errorf("years must be positive")
	}
	if p.YearFrom > 0 && p.YearTo > 0 && p.YearFrom > p.YearTo {
		return fmt.Errorf("year range %d-%d is reversed", p.YearFrom, p.YearTo)
	}
	for _, c := range p.Characteristics {
		if _, err := ParseCharacteristic(string(c)); err != nil {
			return err
		}
	}
	return nil
}
