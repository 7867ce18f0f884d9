package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/metrics"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler serves a group of related routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the "METHOD /path" patterns this handler serves
}

// Router registers handlers and applies middleware.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Builder is the part of [tasks.PlaylistBuilder] the server drives.
type Builder interface {
	Build(ctx context.Context, prefs models.PlaylistPreferences, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error)
	Publish(ctx context.Context, playlist *models.Playlist, publisher services.PlaylistPublisher, progress chan<- tasks.ProgressUpdate) error
}

// PreferencesStore supplies the preferences used when a request carries none.
type PreferencesStore interface {
	LoadOrDefault() (models.PlaylistPreferences, error)
}

// PlaylistStore reads archived playlists.
type PlaylistStore interface {
	Get(id string) (*models.PersistedPlaylist, error)
	List(criteria map[string]any) ([]*models.PersistedPlaylist, error)
}

// ContactStore lists contacts.
type ContactStore interface {
	Contacts(filtered bool) ([]models.Contact, error)
}

// Options configures a [Server]. Builder is required.
type Options struct {
	Addr        string
	Builder     Builder
	Preferences PreferencesStore          // Optional, defaults are used when nil
	Playlists   PlaylistStore             // Optional, history routes return 503 when nil
	Contacts    ContactStore              // Optional, contact routes return 503 when nil
	Publisher   services.PlaylistPublisher // Optional, enables ?publish=true
	Metrics     *metrics.Metrics           // Optional, enables /metrics
	Logger      *log.Logger
}

// Server is the tunename HTTP API.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
}

// New wires every route and middleware.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), Logging(opts.Logger))
	if opts.Metrics != nil {
		router.Use(Instrument(opts.Metrics))
	}

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	router.Handler(NewPlaylistHandler(opts.Builder, opts.Preferences, opts.Playlists, opts.Publisher, opts.Logger))
	router.Handler(NewContactHandler(opts.Contacts))
	if opts.Metrics != nil {
		router.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return &Server{addr: opts.Addr, router: router, logger: opts.Logger}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Addr joins host and port.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
