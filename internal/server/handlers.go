package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/metrics"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
)

const maxBodyBytes = 1 << 16

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// PlaylistSummary is one row of the playlist history listing.
type PlaylistSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Songs     int       `json:"songs"`
	Target    int       `json:"target"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaylistHandler builds playlists and serves the history.
type PlaylistHandler struct {
	builder     Builder
	preferences PreferencesStore
	playlists   PlaylistStore
	publisher   services.PlaylistPublisher
	logger      *log.Logger
}

// NewPlaylistHandler creates a PlaylistHandler. Only builder is required.
func NewPlaylistHandler(builder Builder, prefs PreferencesStore, playlists PlaylistStore, publisher services.PlaylistPublisher, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{builder: builder, preferences: prefs, playlists: playlists, publisher: publisher, logger: logger}
}

func (h *PlaylistHandler) Routes() []string {
	return []string{"POST /api/playlists", "GET /api/playlists", "GET /api/playlists/{id}"}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost:
		h.build(w, r)
	case r.PathValue("id") != "":
		h.show(w, r, r.PathValue("id"))
	default:
		h.list(w, r)
	}
}

// build runs a playlist build. An empty body uses the stored preferences, and
// ?publish=true saves the result to the configured publisher.
func (h *PlaylistHandler) build(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.requestPreferences(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.builder.Build(r.Context(), prefs, nil)
	if err != nil {
		h.logger.Warn("playlist build failed", "error", err)
		writeError(w, err)
		return
	}

	if publish, _ := strconv.ParseBool(r.URL.Query().Get("publish")); publish {
		if err := h.builder.Publish(r.Context(), playlist, h.publisher, nil); err != nil {
			h.logger.Warn("playlist publish failed", "error", err)
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) requestPreferences(r *http.Request) (models.PlaylistPreferences, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return models.PlaylistPreferences{}, fmt.Errorf("%w: failed to read body: %v", shared.ErrInvalidInput, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		if h.preferences == nil {
			return models.DefaultPlaylistPreferences(), nil
		}
		return h.preferences.LoadOrDefault()
	}

	var prefs models.PlaylistPreferences
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prefs); err != nil {
		return prefs, fmt.Errorf("%w: malformed preferences: %v", shared.ErrInvalidInput, err)
	}
	return prefs, nil
}

func (h *PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.playlists == nil {
		writeError(w, fmt.Errorf("%w: playlist history is disabled", shared.ErrServiceUnavailable))
		return
	}

	criteria := map[string]any{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", shared.ErrInvalidInput))
			return
		}
		criteria["limit"] = limit
	}

	stored, err := h.playlists.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]PlaylistSummary, 0, len(stored))
	for _, p := range stored {
		summaries = append(summaries, PlaylistSummary{
			ID:        p.ID(),
			Name:      p.Name(),
			Songs:     p.SongCount(),
			Target:    p.TargetCount(),
			Location:  p.Location(),
			CreatedAt: p.CreatedAt(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *PlaylistHandler) show(w http.ResponseWriter, r *http.Request, id string) {
	if h.playlists == nil {
		writeError(w, fmt.Errorf("%w: playlist history is disabled", shared.ErrServiceUnavailable))
		return
	}

	stored, err := h.playlists.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored.Playlist())
}

// ContactHandler lists contacts, optionally only the saved selection.
type ContactHandler struct {
	store ContactStore
}

func NewContactHandler(store ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

func (h *ContactHandler) Routes() []string {
	return []string{"GET /api/contacts"}
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, fmt.Errorf("%w: no contact store", shared.ErrContactsUnavailable))
		return
	}

	filtered, _ := strconv.ParseBool(r.URL.Query().Get("filtered"))
	contacts, err := h.store.Contacts(filtered)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", shared.ErrContactsUnavailable, err))
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidFlag):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNoContacts), errors.Is(err, shared.ErrNotEnoughSongs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrPlaylistGeneral), errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrAuthFailed):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrContactsUnavailable), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := metrics.BuildResult(err)
	if status == http.StatusNotFound {
		code = "not_found"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
