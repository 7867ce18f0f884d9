// Spotify Web API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPageSize   = 50   // Maximum search limit
	spotifyMaxOffset  = 1000 // Search results past this offset are not served
	spotifyTrackChunk = 100  // Maximum tracks per add-items request
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyPlaylist represents a playlist created on Spotify.
type SpotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
	URI    string `json:"uri"`
}

// SpotifySearchResponse is the body of a track search.
type SpotifySearchResponse struct {
	Tracks struct {
		Items  []SpotifyTrack `json:"items"`
		Total  int            `json:"total"`
		Limit  int            `json:"limit"`
		Offset int            `json:"offset"`
		Next   *string        `json:"next"`
	} `json:"tracks"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService searches the Spotify catalog and saves playlists to a user's account.
//
// Searches use an app token from the client credentials flow, refreshed on expiry.
// Publishing requires a user access token with the playlist-modify-private scope.
type SpotifyService struct {
	client      *resty.Client
	tokenSource *clientcredentials.Config
	userToken   oauth2.TokenSource
	baseURL     string
	market      string
	logger      *log.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotifyService creates a Spotify client from the configured credentials.
func NewSpotifyService(creds shared.SpotifyConfig, logger *log.Logger) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError)
		})

	s := &SpotifyService{
		client: client,
		tokenSource: &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     spotifyTokenURL,
		},
		baseURL: spotifyBaseURL,
		market:  creds.Market,
		logger:  logger,
	}
	if creds.AccessToken != "" {
		s.userToken = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// CanPublish reports whether a user access token is configured.
func (s *SpotifyService) CanPublish() bool {
	return s.userToken != nil
}

// appToken returns a valid client credentials token, fetching a new one when the cached token expired.
func (s *SpotifyService) appToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	token, err := s.tokenSource.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: spotify client credentials: %v", shared.ErrAuthFailed, err)
	}

	s.accessToken = token.AccessToken
	s.tokenExpiry = token.Expiry
	if s.tokenExpiry.IsZero() {
		s.tokenExpiry = time.Now().Add(time.Hour)
	}
	s.logger.Debug("spotify access token refreshed", "expires_at", s.tokenExpiry)
	return s.accessToken, nil
}

// SearchSongs searches tracks whose title contains term as a whole word.
//
// Results are paged until count matches are collected or the catalog runs out. The clean
// characteristic drops explicit tracks; popular and obscure order by popularity.
func (s *SpotifyService) SearchSongs(ctx context.Context, term string, prefs models.SongPreferences, count int) ([]models.Song, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", shared.ErrInvalidInput)
	}
	if count <= 0 {
		return []models.Song{}, nil
	}

	token, err := s.appToken(ctx)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"q":     SearchQuery(term, prefs),
		"type":  "track",
		"limit": strconv.Itoa(spotifyPageSize),
	}
	if s.market != "" {
		params["market"] = s.market
	}

	matcher := titleMatcher(term)
	seen := make(map[string]bool)
	songs := make([]models.Song, 0, count)

	for offset := 0; len(songs) < count && offset < spotifyMaxOffset; offset += spotifyPageSize {
		params["offset"] = strconv.Itoa(offset)

		var page SpotifySearchResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParams(params).
			SetResult(&page).
			SetError(&spotifyErrorBody{}).
			Get(s.baseURL + "/search")
		if err := checkResponse("search", resp, err); err != nil {
			return nil, err
		}

		for _, track := range page.Tracks.Items {
			if len(songs) == count {
				break
			}
			if track.Explicit && prefs.Has(models.Clean) {
				continue
			}
			if !matcher.MatchString(track.Name) {
				continue
			}
			song := track.Song()
			if seen[song.Key()] {
				continue
			}
			seen[song.Key()] = true
			songs = append(songs, song)
		}

		if page.Tracks.Next == nil || len(page.Tracks.Items) == 0 {
			break
		}
	}

	sortByCharacteristics(songs, prefs)
	return songs, nil
}

// PublishPlaylist creates a private playlist on the user's account and adds every song to it.
func (s *SpotifyService) PublishPlaylist(ctx context.Context, playlist *models.Playlist) (string, error) {
	if s.userToken == nil {
		return "", fmt.Errorf("%w: spotify access_token is required to save playlists", shared.ErrNotAuthenticated)
	}
	if playlist == nil || playlist.Len() == 0 {
		return "", fmt.Errorf("%w: playlist is empty", shared.ErrInvalidInput)
	}

	tok, err := s.userToken.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	token := tok.AccessToken

	var user SpotifyUser
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		SetError(&spotifyErrorBody{}).
		Get(s.baseURL + "/me")
	if err := checkResponse("current user", resp, err); err != nil {
		return "", err
	}

	var created SpotifyPlaylist
	resp, err = s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"name":        playlist.Name,
			"description": "Songs named after your contacts",
			"public":      false,
		}).
		SetResult(&created).
		SetError(&spotifyErrorBody{}).
		Post(fmt.Sprintf("%s/users/%s/playlists", s.baseURL, user.ID))
	if err := checkResponse("create playlist", resp, err); err != nil {
		return "", err
	}

	uris := trackURIs(playlist.Songs())
	for chunk := range slices.Chunk(uris, spotifyTrackChunk) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(map[string]any{"uris": chunk}).
			SetError(&spotifyErrorBody{}).
			Post(fmt.Sprintf("%s/playlists/%s/tracks", s.baseURL, created.ID))
		if err := checkResponse("add tracks", resp, err); err != nil {
			return "", err
		}
	}

	s.logger.Info("playlist saved to spotify", "id", created.ID, "tracks", len(uris))
	if created.URI == "" {
		return "spotify:playlist:" + created.ID, nil
	}
	return created.URI, nil
}

// Song converts the track into a [models.Song].
func (t SpotifyTrack) Song() models.Song {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return models.Song{
		ID:         t.ID,
		URI:        t.URI,
		Title:      t.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Popularity: t.Popularity,
		Explicit:   t.Explicit,
	}
}

// SearchQuery builds the Spotify search expression for a title term and song preferences.
func SearchQuery(term string, prefs models.SongPreferences) string {
	var b strings.Builder
	fmt.Fprintf(&b, "track:%q", term)

	if genre := strings.TrimSpace(prefs.Genre); genre != "" {
		fmt.Fprintf(&b, " genre:%q", strings.ToLower(genre))
	}

	switch {
	case prefs.YearFrom > 0 && prefs.YearTo > 0:
		fmt.Fprintf(&b, " year:%d-%d", prefs.YearFrom, prefs.YearTo)
	case prefs.YearFrom > 0:
		fmt.Fprintf(&b, " year:%d-%d", prefs.YearFrom, time.Now().Year())
	case prefs.YearTo > 0:
		fmt.Fprintf(&b, " year:0-%d", prefs.YearTo)
	}
	return b.String()
}

// titleMatcher matches titles containing term as a whole word, ignoring case.
// Letters and digits on either side of the term disqualify a match.
func titleMatcher(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `(?:$|[^\p{L}\p{N}])`)
}

func sortByCharacteristics(songs []models.Song, prefs models.SongPreferences) {
	switch {
	case prefs.Has(models.Popular):
		slices.SortStableFunc(songs, func(a, b models.Song) int { return cmp.Compare(b.Popularity, a.Popularity) })
	case prefs.Has(models.Obscure):
		slices.SortStableFunc(songs, func(a, b models.Song) int { return cmp.Compare(a.Popularity, b.Popularity) })
	}
}

func trackURIs(songs []models.Song) []string {
	uris := make([]string, 0, len(songs))
	for _, song := range songs {
		switch {
		case song.URI != "":
			uris = append(uris, song.URI)
		case song.ID != "":
			uris = append(uris, "spotify:track:"+song.ID)
		}
	}
	return uris
}

// checkResponse converts transport failures and non-2xx statuses into shared errors.
func checkResponse(operation string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: spotify %s: %v", shared.ErrTimeout, operation, err)
		}
		return fmt.Errorf("%w: spotify %s: %v", shared.ErrAPIRequest, operation, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	msg := resp.Status()
	if body, ok := resp.Error().(*spotifyErrorBody); ok && body.Error.Message != "" {
		msg = body.Error.Message
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: spotify %s: %s", shared.ErrAuthFailed, operation, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: spotify %s: %s", shared.ErrPlaylistNotFound, operation, msg)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: spotify %s: %s", shared.ErrServiceUnavailable, operation, msg)
	default:
		return fmt.Errorf("%w: spotify %s: status %d: %s", shared.ErrAPIRequest, operation, resp.StatusCode(), msg)
	}
}
