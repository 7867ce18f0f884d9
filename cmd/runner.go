package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/cache"
	"github.com/desertthunder/tunename/internal/contacts"
	"github.com/desertthunder/tunename/internal/metrics"
	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, search backend and cache are opened on first use so that commands
// which need none of them (e.g. setup config) work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	spotifySvc *services.SpotifyService
	searcher   services.SongSearcher
	publisher  services.PlaylistPublisher
	cache      cache.Cache
	metrics    *metrics.Metrics
	openURL    func(location string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB                    // Default: opened from Config.Database
	Searcher   services.SongSearcher      // Default: Spotify, wrapped in the configured cache
	Publisher  services.PlaylistPublisher // Default: Spotify when a user token is configured
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		searcher:   opts.Searcher,
		publisher:  opts.Publisher,
		metrics:    metrics.New(),
		openURL:    shared.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, contactsCommand, prefsCommand, playlistCommand, searchCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database and cache connections.
func (r *Runner) Close() error {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Warn("failed to close cache", "error", err)
		}
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// database opens and migrates the configured database once.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, err)
	}
	r.db = db
	return db, nil
}

// spotify creates the Spotify client and, unless a publisher was injected, uses it to publish.
func (r *Runner) spotify() (*services.SpotifyService, error) {
	if r.spotifySvc != nil {
		return r.spotifySvc, nil
	}
	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify, r.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: set credentials.spotify in %s or TUNENAME_SPOTIFY_CLIENT_ID/SECRET",
			err, r.configLabel())
	}
	if r.publisher == nil && svc.CanPublish() {
		r.publisher = svc
	}
	r.spotifySvc = svc
	return svc, nil
}

// songSearcher returns the search backend, wrapped in the configured cache.
func (r *Runner) songSearcher() (services.SongSearcher, error) {
	if r.searcher != nil {
		return r.searcher, nil
	}

	svc, err := r.spotify()
	if err != nil {
		return nil, err
	}

	c, err := r.searchCache()
	if err != nil {
		r.logger.Warn("search cache disabled", "error", err)
	}
	if c == nil {
		r.searcher = svc
		return r.searcher, nil
	}

	r.searcher = services.NewCachedSearcher(svc, c, r.config.Cache.TTL(), r.logger)
	return r.searcher, nil
}

// searchCache opens the cache backend named by cache.backend. It returns nil for "none".
func (r *Runner) searchCache() (cache.Cache, error) {
	if r.cache != nil {
		return r.cache, nil
	}

	switch r.config.Cache.Backend {
	case cache.BackendNone, "":
		return nil, nil
	case cache.BackendSQLite:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		r.cache = repositories.NewSearchCacheRepository(db)
	case cache.BackendValkey:
		v, err := cache.NewValkey(r.config.Cache.ValkeyURL, "tunename:")
		if err != nil {
			return nil, err
		}
		r.cache = v
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", shared.ErrInvalidConfig, r.config.Cache.Backend)
	}
	return r.cache, nil
}

// playlistPublisher returns the configured publisher, creating the Spotify client if needed.
func (r *Runner) playlistPublisher() (services.PlaylistPublisher, error) {
	if r.publisher != nil {
		return r.publisher, nil
	}
	if _, err := r.spotify(); err != nil {
		return nil, err
	}
	if r.publisher == nil {
		return nil, fmt.Errorf("%w: saving to Spotify needs credentials.spotify.access_token", shared.ErrNotAuthenticated)
	}
	return r.publisher, nil
}

// builderOpts configures a build beyond what the config file sets.
type builderOpts struct {
	seed    uint64
	seeded  bool
	archive bool
}

// playlistBuilder wires a [tasks.PlaylistBuilder] from the config and the stored contacts.
func (r *Runner) playlistBuilder(opts builderOpts) (*tasks.PlaylistBuilder, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	searcher, err := r.songSearcher()
	if err != nil {
		return nil, err
	}

	sampler := tasks.NewRandomSampler()
	if opts.seeded {
		sampler = tasks.NewSampler(opts.seed)
	}

	var history tasks.PlaylistHistory
	if opts.archive {
		history = repositories.NewPlaylistRepository(db)
	}

	search := r.config.Search
	return tasks.NewPlaylistBuilder(tasks.BuilderOpts{
		Searcher:        searcher,
		Contacts:        contacts.NewSource(repositories.NewContactRepository(db)),
		History:         history,
		Recorder:        r.metrics,
		Sampler:         sampler,
		Logger:          shared.WithLogger(r.logger, "component", "builder"),
		Name:            r.config.Playlist.Name,
		RoundTimeout:    search.RoundTimeout(),
		Concurrency:     search.Concurrency,
		RateLimit:       search.RateLimit,
		SearchCount:     search.DefaultCount,
		MinSongFraction: search.MinSongFraction,
	}), nil
}

func (r *Runner) openBrowser(location string) error {
	r.logger.Info("opening playlist", "url", shared.WebURL(location))
	return r.openURL(location)
}

func (r *Runner) configLabel() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain("\n"+format+"\n", args...)
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
