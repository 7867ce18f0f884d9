package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultRoundTimeout bounds how long a single search round waits for the backend.
const DefaultRoundTimeout = 30 * time.Second

// SearchResult is the outcome of one contact's search.
type SearchResult struct {
	Songs []models.Song
	Err   error
}

// FetcherOpts configures a [Fetcher].
type FetcherOpts struct {
	Timeout     time.Duration // Round timeout (default: 30s)
	Concurrency int           // Simultaneous searches (default: one per contact)
	RateLimit   float64       // Searches per second, 0 disables pacing
	Logger      *log.Logger
}

// Fetcher runs one round of concurrent song searches.
type Fetcher struct {
	searcher    services.SongSearcher
	timeout     time.Duration
	concurrency int
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewFetcher creates a Fetcher that searches with searcher.
func NewFetcher(searcher services.SongSearcher, opts FetcherOpts) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRoundTimeout
	}

	f := &Fetcher{
		searcher:    searcher,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, opts.Concurrency))
	}
	return f
}

// Fetch searches for count songs per contact, using each contact's first name as the term.
//
// Results are keyed by contact ID. Fetch returns once every search has resolved or the
// round timeout elapses; contacts still unresolved at that point are absent from the map.
// A search that fails because the round ended is treated as unresolved, not as an error.
func (f *Fetcher) Fetch(ctx context.Context, contacts []models.Contact, prefs models.SongPreferences, count int) map[string]SearchResult {
	roundCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		closed  bool
		results = make(map[string]SearchResult, len(contacts))
	)

	g, gctx := errgroup.WithContext(roundCtx)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, contact := range contacts {
			g.Go(func() error {
				if f.limiter != nil {
					if err := f.limiter.Wait(gctx); err != nil {
						return nil
					}
				}

				songs, err := f.searcher.SearchSongs(gctx, contact.SearchTerm(), prefs, count)
				if err != nil && gctx.Err() != nil {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if !closed {
					results[contact.ID] = SearchResult{Songs: songs, Err: err}
				}
				return nil
			})
		}
		g.Wait()
	}()

	select {
	case <-done:
	case <-roundCtx.Done():
		if f.logger != nil && ctx.Err() == nil {
			f.logger.Warn("search round timed out", "timeout", f.timeout, "contacts", len(contacts))
		}
	}

	mu.Lock()
	defer mu.Unlock()
	closed = true
	return results
}
