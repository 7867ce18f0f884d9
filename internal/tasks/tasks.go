package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
)

// DefaultPlaylistName names playlists when no name is configured.
const DefaultPlaylistName = "Tune That Name"

// ContactSource supplies the contacts a build draws from.
type ContactSource interface {
	// Retrieve returns every contact, or only the saved selection when filtered is true.
	Retrieve(ctx context.Context, filtered bool) ([]models.Contact, error)
}

// SearchOutcome classifies a single contact search.
type SearchOutcome string

const (
	OutcomeSongs   SearchOutcome = "songs"   // At least one song found
	OutcomeEmpty   SearchOutcome = "empty"   // Search succeeded with no songs
	OutcomeError   SearchOutcome = "error"   // Backend returned an error
	OutcomePending SearchOutcome = "pending" // Did not resolve before the round ended
)

// Recorder receives build telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveSearch(outcome SearchOutcome)
	ObserveRound(d time.Duration)
	ObserveBuild(err error)
}

// PlaylistHistory stores finished playlists.
type PlaylistHistory interface {
	// Archive persists playlist and sets its ID.
	Archive(playlist *models.Playlist, targetCount int) error
	// SetLocation records where a previously archived playlist was published.
	SetLocation(id, location string) error
}

// BuilderOpts configures a [PlaylistBuilder]. Only Searcher is required.
type BuilderOpts struct {
	Searcher        services.SongSearcher
	Contacts        ContactSource
	History         PlaylistHistory // Optional
	Recorder        Recorder        // Optional
	Sampler         *Sampler        // Default: [NewRandomSampler]
	Logger          *log.Logger     // Default: discards output
	Name            string          // Default: [DefaultPlaylistName]
	RoundTimeout    time.Duration   // Default: [DefaultRoundTimeout]
	Concurrency     int             // Simultaneous searches per round, 0 for unbounded
	RateLimit       float64         // Searches per second, 0 disables pacing
	SearchCount     int             // Default per-contact request size, default [DefaultSearchCount]
	MinSongFraction float64         // Builds filling this fraction of the target or less fail
}

// PlaylistBuilder turns playlist preferences into a playlist.
//
// A PlaylistBuilder holds no per-build state and is safe for concurrent Build calls.
type PlaylistBuilder struct {
	contacts        ContactSource
	history         PlaylistHistory
	recorder        Recorder
	fetcher         *Fetcher
	sampler         *Sampler
	logger          *log.Logger
	name            string
	searchCount     int
	minSongFraction float64
}

// NewPlaylistBuilder creates a new PlaylistBuilder with the provided dependencies.
func NewPlaylistBuilder(opts BuilderOpts) *PlaylistBuilder {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Sampler == nil {
		opts.Sampler = NewRandomSampler()
	}
	if opts.Name == "" {
		opts.Name = DefaultPlaylistName
	}
	if opts.SearchCount <= 0 {
		opts.SearchCount = DefaultSearchCount
	}

	return &PlaylistBuilder{
		contacts: opts.Contacts,
		history:  opts.History,
		recorder: opts.Recorder,
		fetcher: NewFetcher(opts.Searcher, FetcherOpts{
			Timeout:     opts.RoundTimeout,
			Concurrency: opts.Concurrency,
			RateLimit:   opts.RateLimit,
			Logger:      opts.Logger,
		}),
		sampler:         opts.Sampler,
		logger:          opts.Logger,
		name:            opts.Name,
		searchCount:     opts.SearchCount,
		minSongFraction: opts.MinSongFraction,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (b *PlaylistBuilder) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Build loads contacts according to prefs and builds a playlist from them.
//
// Exactly one of the playlist and the error is non-nil. Domain failures wrap
// [shared.ErrNoContacts], [shared.ErrContactsUnavailable], [shared.ErrPlaylistGeneral]
// or [shared.ErrNotEnoughSongs]. A successful playlist is archived when a history is configured.
func (b *PlaylistBuilder) Build(ctx context.Context, prefs models.PlaylistPreferences, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	playlist, err := b.build(ctx, prefs, progress)
	if b.recorder != nil {
		b.recorder.ObserveBuild(err)
	}
	return playlist, err
}

func (b *PlaylistBuilder) build(ctx context.Context, prefs models.PlaylistPreferences, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if b.contacts == nil {
		return nil, fmt.Errorf("%w: contact source not initialized", shared.ErrServiceUnavailable)
	}
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	b.sendProgress(progress, loadingContactsUpdate(prefs.FilterContacts))

	contacts, err := b.contacts.Retrieve(ctx, prefs.FilterContacts)
	if err != nil {
		if errors.Is(err, shared.ErrNoContacts) {
			return nil, err
		}
		if !errors.Is(err, shared.ErrContactsUnavailable) {
			err = fmt.Errorf("%w: %v", shared.ErrContactsUnavailable, err)
		}
		return nil, err
	}

	playlist, err := b.buildFrom(ctx, contacts, prefs, progress)
	if err != nil {
		return nil, err
	}

	if b.history != nil {
		if err := b.history.Archive(playlist, prefs.NumberOfSongs); err != nil {
			b.logger.Warn("failed to archive playlist", "error", err)
		} else {
			b.sendProgress(progress, savedUpdate(playlist))
		}
	}

	return playlist, nil
}

// BuildFromContacts builds a playlist from an explicit contact list, skipping the contact source and history.
func (b *PlaylistBuilder) BuildFromContacts(ctx context.Context, contacts []models.Contact, prefs models.PlaylistPreferences, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	playlist, err := b.buildFrom(ctx, contacts, prefs, progress)
	if b.recorder != nil {
		b.recorder.ObserveBuild(err)
	}
	return playlist, err
}

// Publish saves playlist to the publisher's service and records the resulting location.
func (b *PlaylistBuilder) Publish(ctx context.Context, playlist *models.Playlist, publisher services.PlaylistPublisher, progress chan<- ProgressUpdate) error {
	if publisher == nil {
		return fmt.Errorf("%w: no playlist publisher configured", shared.ErrServiceUnavailable)
	}
	if playlist == nil || playlist.Len() == 0 {
		return fmt.Errorf("%w: playlist is empty", shared.ErrInvalidInput)
	}

	b.sendProgress(progress, publishingUpdate(publisher.Name()))

	location, err := publisher.PublishPlaylist(ctx, playlist)
	if err != nil {
		return fmt.Errorf("failed to publish playlist: %w", err)
	}
	playlist.Location = location

	if b.history != nil && playlist.ID != "" {
		if err := b.history.SetLocation(playlist.ID, location); err != nil {
			b.logger.Warn("failed to record playlist location", "id", playlist.ID, "error", err)
		}
	}

	b.sendProgress(progress, publishedUpdate(location))
	return nil
}
