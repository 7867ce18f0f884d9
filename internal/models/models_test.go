package models

import (
	"errors"
	"testing"
)

func TestContact(t *testing.T) {
	tc := []struct {
		name       string
		contact    Contact
		searchable bool
		term       string
		display    string
	}{
		{
			name:       "first and last name",
			contact:    Contact{ID: "1", FirstName: "Johnny", LastName: "Cash"},
			searchable: true,
			term:       "Johnny",
			display:    "Johnny Cash",
		},
		{
			name:       "padded first name",
			contact:    Contact{ID: "2", FirstName: "  Mary  ", FullName: "Mary Jane"},
			searchable: true,
			term:       "Mary",
			display:    "Mary Jane",
		},
		{
			name:       "blank first name",
			contact:    Contact{ID: "3", FirstName: "   ", LastName: "Smith"},
			searchable: false,
			term:       "",
			display:    "Smith",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contact.Searchable(); got != tt.searchable {
				t.Errorf("Searchable() = %v, want %v", got, tt.searchable)
			}
			if got := tt.contact.SearchTerm(); got != tt.term {
				t.Errorf("SearchTerm() = %q, want %q", got, tt.term)
			}
			if got := tt.contact.DisplayName(); got != tt.display {
				t.Errorf("DisplayName() = %q, want %q", got, tt.display)
			}
		})
	}

	t.Run("SearchableContacts keeps order", func(t *testing.T) {
		got := SearchableContacts([]Contact{
			{ID: "a", FirstName: "Ann"},
			{ID: "b", FirstName: ""},
			{ID: "c", FirstName: "Cal"},
		})
		if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
			t.Errorf("unexpected result %+v", got)
		}
	})
}

func TestSong(t *testing.T) {
	t.Run("Key prefers URI", func(t *testing.T) {
		s := Song{ID: "id1", URI: "spotify:track:id1"}
		if s.Key() != "spotify:track:id1" {
			t.Errorf("expected URI key, got %s", s.Key())
		}
		if (Song{ID: "id2"}).Key() != "id2" {
			t.Error("expected ID fallback")
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := (Song{Title: "Jolene", Artist: "Dolly Parton"}).String(); got != "Dolly Parton - Jolene" {
			t.Errorf("unexpected %q", got)
		}
		if got := (Song{Title: "Jolene"}).String(); got != "Jolene" {
			t.Errorf("unexpected %q", got)
		}
	})
}

func TestSongPreferences(t *testing.T) {
	t.Run("ParseCharacteristic", func(t *testing.T) {
		c, err := ParseCharacteristic(" Popular ")
		if err != nil || c != Popular {
			t.Errorf("expected popular, got %v (%v)", c, err)
		}
		if _, err := ParseCharacteristic("loud"); err == nil {
			t.Error("expected error for unknown characteristic")
		}
	})

	t.Run("Key is order independent", func(t *testing.T) {
		a := SongPreferences{Characteristics: []Characteristic{Clean, Popular}, Genre: "Rock"}
		b := SongPreferences{Characteristics: []Characteristic{Popular, Clean, Popular}, Genre: "rock"}
		if a.Key() != b.Key() {
			t.Errorf("expected equal keys, got %q and %q", a.Key(), b.Key())
		}
	})

	tc := []struct {
		name    string
		prefs   SongPreferences
		wantErr bool
	}{
		{name: "empty", prefs: SongPreferences{}},
		{name: "popular clean", prefs: SongPreferences{Characteristics: []Characteristic{Popular, Clean}}},
		{name: "popular and obscure", prefs: SongPreferences{Characteristics: []Characteristic{Popular, Obscure}}, wantErr: true},
		{name: "reversed years", prefs: SongPreferences{YearFrom: 2000, YearTo: 1990}, wantErr: true},
		{name: "unknown characteristic", prefs: SongPreferences{Characteristics: []Characteristic{"loud"}}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prefs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaylistPreferences(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := DefaultPlaylistPreferences()
		if p.NumberOfSongs != 10 || p.FilterContacts || !p.SongPreferences.Has(Popular) {
			t.Errorf("unexpected defaults %+v", p)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("defaults should be valid: %v", err)
		}
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		p := DefaultPlaylistPreferences()
		p.NumberOfSongs = 0
		if err := p.Validate(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPlaylist(t *testing.T) {
	s1 := Song{ID: "1", URI: "u1", Title: "One"}
	s2 := Song{ID: "2", URI: "u2", Title: "Two"}
	a := Contact{ID: "a", FirstName: "A"}

	p := &Playlist{Name: "Mix", Entries: []PlaylistEntry{{Song: s1, Contact: a}, {Song: s2, Contact: a}}}

	t.Run("Songs", func(t *testing.T) {
		songs := p.Songs()
		if p.Len() != 2 || songs[0] != s1 || songs[1] != s2 {
			t.Errorf("unexpected songs %+v", songs)
		}
	})

	t.Run("Equal", func(t *testing.T) {
		same := &Playlist{Name: "Mix", Entries: []PlaylistEntry{{Song: s1}, {Song: s2}}}
		if !p.Equal(same) {
			t.Error("expected playlists with the same songs to be equal")
		}
		reordered := &Playlist{Name: "Mix", Entries: []PlaylistEntry{{Song: s2}, {Song: s1}}}
		if p.Equal(reordered) {
			t.Error("order should matter")
		}
		saved := &Playlist{Name: "Mix", Location: "spotify:playlist:x", Entries: p.Entries}
		if p.Equal(saved) {
			t.Error("location should matter")
		}
		var nilPlaylist *Playlist
		if p.Equal(nilPlaylist) {
			t.Error("nil should not equal a playlist")
		}
	})

	t.Run("ContactError unwraps", func(t *testing.T) {
		cause := errors.New("boom")
		err := ContactError{Contact: a, Err: cause}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the cause")
		}
	})

	t.Run("PersistedPlaylist", func(t *testing.T) {
		pp := NewPersistedPlaylist(1, *p, 1)
		if err := pp.Validate(); err == nil {
			t.Error("expected error when songs exceed target")
		}

		pp = NewPersistedPlaylist(1, *p, 5)
		pp.SetID("pl-1")
		if err := pp.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got := pp.Playlist(); got.ID != "pl-1" || got.CreatedAt.IsZero() {
			t.Errorf("expected id and timestamp filled in, got %+v", got)
		}
	})

	t.Run("PersistedContact", func(t *testing.T) {
		pc := NewPersistedContact(1, Contact{FirstName: "Ann"})
		if err := pc.Validate(); err == nil {
			t.Error("expected error for missing contact id")
		}
	})
}
