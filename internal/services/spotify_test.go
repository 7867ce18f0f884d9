package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

type fakeSpotify struct {
	t           *testing.T
	server      *httptest.Server
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	pages       [][]SpotifyTrack
	searchQuery atomic.Value
	status      int
	created     map[string]any
	added       [][]string
}

func newFakeSpotify(t *testing.T, pages ...[]SpotifyTrack) *fakeSpotify {
	t.Helper()
	f := &fakeSpotify{t: t, pages: pages, status: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"app-token","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		f.searchQuery.Store(r.URL.Query())
		if r.Header.Get("Authorization") != "Bearer app-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			fmt.Fprintf(w, `{"error":{"status":%d,"message":"boom"}}`, f.status)
			return
		}

		var offset int
		fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)
		page := offset / spotifyPageSize

		var resp SpotifySearchResponse
		if page < len(f.pages) {
			resp.Tracks.Items = f.pages[page]
		}
		if page+1 < len(f.pages) {
			next := "next"
			resp.Tracks.Next = &next
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"listener","display_name":"Listener"}`)
	})
	mux.HandleFunc("POST /v1/users/listener/playlists", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&f.created)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"pl1","name":"Tune That Name","public":false,"uri":"spotify:playlist:pl1"}`)
	})
	mux.HandleFunc("POST /v1/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.added = append(f.added, body.URIs)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"snapshot_id":"s1"}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSpotify) service(accessToken string) *SpotifyService {
	f.t.Helper()
	srv, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		AccessToken:  accessToken,
		Market:       "US",
	}, nil)
	if err != nil {
		f.t.Fatalf("expected no error, got %v", err)
	}
	srv.baseURL = f.server.URL + "/v1"
	srv.tokenSource.TokenURL = f.server.URL + "/api/token"
	srv.client.SetRetryCount(0)
	return srv
}

func track(id, name string, popularity int, explicit bool) SpotifyTrack {
	return SpotifyTrack{
		ID:         id,
		Name:       name,
		URI:        "spotify:track:" + id,
		Artists:    []SpotifyArtist{{Name: "Artist " + id}},
		Album:      SpotifyAlbum{Name: "Album " + id},
		Popularity: popularity,
		Explicit:   explicit,
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.CanPublish() {
				t.Error("expected CanPublish to be false without an access token")
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientSecret: "secret"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("With Access Token", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret", AccessToken: "tok"}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !srv.CanPublish() {
				t.Error("expected CanPublish to be true with an access token")
			}
		})
	})

	t.Run("SearchSongs", func(t *testing.T) {
		t.Run("Keeps Whole Word Title Matches", func(t *testing.T) {
			fake := newFakeSpotify(t, []SpotifyTrack{
				track("1", "Anna", 50, false),
				track("2", "Ann's Song", 40, false),
				track("3", "Hello ANN", 30, false),
				track("4", "Joanne", 90, false),
			})
			srv := fake.service("")

			songs, err := srv.SearchSongs(context.Background(), "Ann", models.SongPreferences{}, 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(songs) != 2 {
				t.Fatalf("expected 2 songs, got %d: %v", len(songs), songs)
			}
			if songs[0].ID != "2" || songs[1].ID != "3" {
				t.Errorf("unexpected songs %v", songs)
			}
			if songs[0].Artist != "Artist 2" || songs[0].Album != "Album 2" {
				t.Errorf("expected track fields to be mapped, got %+v", songs[0])
			}
		})

		t.Run("Sends Query Parameters", func(t *testing.T) {
			fake := newFakeSpotify(t, []SpotifyTrack{track("1", "Maria", 10, false)})
			srv := fake.service("")

			prefs := models.SongPreferences{Genre: "Rock", YearFrom: 1990, YearTo: 1999}
			if _, err := srv.SearchSongs(context.Background(), "Maria", prefs, 5); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			q := fake.searchQuery.Load().(url.Values)
			if got := q.Get("q"); got != `track:"Maria" genre:"rock" year:1990-1999` {
				t.Errorf("unexpected query %q", got)
			}
			if q.Get("type") != "track" || q.Get("market") != "US" {
				t.Errorf("unexpected params %v", q)
			}
		})

		t.Run("Clean Drops Explicit Tracks", func(t *testing.T) {
			fake := newFakeSpotify(t, []SpotifyTrack{
				track("1", "Lucy", 50, true),
				track("2", "Lucy", 40, false),
			})
			srv := fake.service("")

			songs, err := srv.SearchSongs(context.Background(), "lucy", models.SongPreferences{
				Characteristics: []models.Characteristic{models.Clean},
			}, 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(songs) != 1 || songs[0].ID != "2" {
				t.Errorf("expected only the clean track, got %v", songs)
			}
		})

		t.Run("Orders By Popularity", func(t *testing.T) {
			items := []SpotifyTrack{
				track("1", "Rose", 10, false),
				track("2", "Rose", 90, false),
				track("3", "Rose", 50, false),
			}

			tests := []struct {
				name string
				c    models.Characteristic
				want []string
			}{
				{"popular", models.Popular, []string{"2", "3", "1"}},
				{"obscure", models.Obscure, []string{"1", "3", "2"}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					srv := newFakeSpotify(t, items).service("")
					songs, err := srv.SearchSongs(context.Background(), "Rose", models.SongPreferences{
						Characteristics: []models.Characteristic{tt.c},
					}, 10)
					if err != nil {
						t.Fatalf("expected no error, got %v", err)
					}
					for i, id := range tt.want {
						if songs[i].ID != id {
							t.Errorf("position %d: expected %s, got %s", i, id, songs[i].ID)
						}
					}
				})
			}
		})

		t.Run("Pages Until Count Reached", func(t *testing.T) {
			page1 := make([]SpotifyTrack, 0, spotifyPageSize)
			for i := range spotifyPageSize {
				page1 = append(page1, track(fmt.Sprintf("a%d", i), "Tom", 0, false))
			}
			page2 := []SpotifyTrack{track("b1", "Tom", 0, false), track("b2", "Tom", 0, false)}
			fake := newFakeSpotify(t, page1, page2)
			srv := fake.service("")

			songs, err := srv.SearchSongs(context.Background(), "Tom", models.SongPreferences{}, 51)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(songs) != 51 {
				t.Errorf("expected 51 songs, got %d", len(songs))
			}
			if fake.searchCalls.Load() != 2 {
				t.Errorf("expected 2 search requests, got %d", fake.searchCalls.Load())
			}
		})

		t.Run("Reuses App Token", func(t *testing.T) {
			fake := newFakeSpotify(t, []SpotifyTrack{track("1", "Eve", 0, false)})
			srv := fake.service("")

			for range 3 {
				if _, err := srv.SearchSongs(context.Background(), "Eve", models.SongPreferences{}, 1); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
			}
			if fake.tokenCalls.Load() != 1 {
				t.Errorf("expected 1 token request, got %d", fake.tokenCalls.Load())
			}
		})

		t.Run("Maps Error Status", func(t *testing.T) {
			fake := newFakeSpotify(t)
			fake.status = http.StatusBadRequest
			srv := fake.service("")

			_, err := srv.SearchSongs(context.Background(), "Eve", models.SongPreferences{}, 1)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "boom") {
				t.Errorf("expected API message in error, got %v", err)
			}
		})

		t.Run("Empty Term", func(t *testing.T) {
			srv := newFakeSpotify(t).service("")
			if _, err := srv.SearchSongs(context.Background(), "  ", models.SongPreferences{}, 1); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Zero Count", func(t *testing.T) {
			fake := newFakeSpotify(t)
			songs, err := fake.service("").SearchSongs(context.Background(), "Eve", models.SongPreferences{}, 0)
			if err != nil || len(songs) != 0 {
				t.Errorf("expected no songs and no error, got %v, %v", songs, err)
			}
			if fake.searchCalls.Load() != 0 {
				t.Error("expected no request for a zero count")
			}
		})
	})

	t.Run("PublishPlaylist", func(t *testing.T) {
		playlist := func(n int) *models.Playlist {
			pl := &models.Playlist{Name: "Tune That Name"}
			for i := range n {
				pl.Entries = append(pl.Entries, models.PlaylistEntry{
					Song: models.Song{ID: fmt.Sprintf("t%d", i)},
				})
			}
			return pl
		}

		t.Run("Creates Private Playlist In Chunks", func(t *testing.T) {
			fake := newFakeSpotify(t)
			srv := fake.service("user-token")

			location, err := srv.PublishPlaylist(context.Background(), playlist(150))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if location != "spotify:playlist:pl1" {
				t.Errorf("expected playlist URI, got %s", location)
			}
			if fake.created["name"] != "Tune That Name" || fake.created["public"] != false {
				t.Errorf("unexpected create body %v", fake.created)
			}
			if len(fake.added) != 2 || len(fake.added[0]) != 100 || len(fake.added[1]) != 50 {
				t.Fatalf("expected chunks of 100 and 50, got %d chunks", len(fake.added))
			}
			if fake.added[0][0] != "spotify:track:t0" {
				t.Errorf("expected track URI built from ID, got %s", fake.added[0][0])
			}
		})

		t.Run("Without User Token", func(t *testing.T) {
			srv := newFakeSpotify(t).service("")
			if _, err := srv.PublishPlaylist(context.Background(), playlist(1)); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Rejected Token", func(t *testing.T) {
			srv := newFakeSpotify(t).service("stale-token")
			if _, err := srv.PublishPlaylist(context.Background(), playlist(1)); !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Empty Playlist", func(t *testing.T) {
			srv := newFakeSpotify(t).service("user-token")
			if _, err := srv.PublishPlaylist(context.Background(), playlist(0)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		prefs models.SongPreferences
		want  string
	}{
		{"term only", models.SongPreferences{}, `track:"Zoë"`},
		{"genre", models.SongPreferences{Genre: " Jazz "}, `track:"Zoë" genre:"jazz"`},
		{"year to only", models.SongPreferences{YearTo: 1980}, `track:"Zoë" year:0-1980`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchQuery("Zoë", tt.prefs); got != tt.want {
				t.Errorf("SearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleMatcher(t *testing.T) {
	tests := []struct {
		title string
		match bool
	}{
		{"Zoë", true},
		{"Song for zoë", true},
		{"Zoëy", false},
		{"(Zoë)", true},
		{"Zoe", false},
	}
	m := titleMatcher("Zoë")
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := m.MatchString(tt.title); got != tt.match {
				t.Errorf("MatchString(%q) = %v, want %v", tt.title, got, tt.match)
			}
		})
	}
}
