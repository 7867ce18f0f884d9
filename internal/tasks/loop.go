package tasks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

// searchPlan holds the limits derived once per build.
type searchPlan struct {
	target      int // Songs wanted
	maxSearches int // Resolved searches allowed
	threshold   int // Failed searches that abort the build
	count       int // Songs requested per contact
}

func newSearchPlan(target, eligible, defaultCount int) searchPlan {
	maxSearches := MaxSongSearches(target)
	return searchPlan{
		target:      target,
		maxSearches: maxSearches,
		threshold:   ErrorThreshold(eligible, maxSearches),
		count:       SearchCountFor(target, eligible, defaultCount),
	}
}

// searchState is the loop state between rounds. fold never mutates its receiver.
type searchState struct {
	round     int
	attempted int // Contacts sampled so far, whatever their outcome
	found     []models.ContactSongs
	failed    []models.ContactError
	remaining []models.Contact
}

func (s searchState) searched() int {
	return len(s.found) + len(s.failed)
}

// fold merges a round's results into a new state. Contacts with zero songs and
// contacts that did not resolve are dropped; pending reports the latter.
func (s searchState) fold(batch []models.Contact, results map[string]SearchResult) (next searchState, pending int, outcomes []SearchOutcome) {
	next = searchState{
		round:     s.round + 1,
		attempted: s.attempted + len(batch),
		found:     slices.Clone(s.found),
		failed:    slices.Clone(s.failed),
		remaining: s.remaining,
	}

	outcomes = make([]SearchOutcome, 0, len(batch))
	for _, contact := range batch {
		r, ok := results[contact.ID]
		switch {
		case !ok:
			pending++
			outcomes = append(outcomes, OutcomePending)
		case r.Err != nil:
			next.failed = append(next.failed, models.ContactError{Contact: contact, Err: r.Err})
			outcomes = append(outcomes, OutcomeError)
		case len(r.Songs) == 0:
			outcomes = append(outcomes, OutcomeEmpty)
		default:
			next.found = append(next.found, models.ContactSongs{Contact: contact, Songs: r.Songs})
			outcomes = append(outcomes, OutcomeSongs)
		}
	}
	return next, pending, outcomes
}

// nextBatch samples the contacts for the following round, sized so that neither the
// song target nor the search budget can be overshot. Contacts that came back empty or
// unresolved still spend budget, so no build searches more than maxSearches contacts.
func (s searchState) nextBatch(plan searchPlan, sampler *Sampler) ([]models.Contact, searchState) {
	n := min(plan.target-len(s.found), plan.maxSearches-s.searched(), plan.maxSearches-s.attempted)
	batch, remaining := sampler.Sample(n, s.remaining)
	s.remaining = remaining
	return batch, s
}

// proceed reports whether another round should run with batch.
func (s searchState) proceed(plan searchPlan, batch []models.Contact) bool {
	return len(s.found) < plan.target &&
		s.searched() < plan.maxSearches &&
		len(s.failed) < plan.threshold &&
		len(batch) > 0
}

func (b *PlaylistBuilder) buildFrom(ctx context.Context, contacts []models.Contact, prefs models.PlaylistPreferences, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	eligible := uniqueContacts(models.SearchableContacts(contacts))
	b.sendProgress(progress, contactsLoadedUpdate(len(eligible), len(contacts)))

	if len(eligible) == 0 {
		return nil, shared.ErrNoContacts
	}

	plan := newSearchPlan(prefs.NumberOfSongs, len(eligible), b.searchCount)
	logger := b.logger.With("target", plan.target, "contacts", len(eligible))
	logger.Debug("starting search",
		"max_searches", plan.maxSearches, "error_threshold", plan.threshold, "songs_per_contact", plan.count)

	batch, remaining := b.sampler.Sample(plan.target, eligible)
	state := searchState{remaining: remaining}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("playlist build cancelled: %w", err)
		}

		b.sendProgress(progress, roundStartedUpdate(state.round+1, len(batch), plan.maxSearches))

		start := time.Now()
		results := b.fetcher.Fetch(ctx, batch, prefs.SongPreferences, plan.count)

		next, pending, outcomes := state.fold(batch, results)
		b.observeRound(time.Since(start), outcomes)
		b.logRound(logger, next, batch, results)

		state = next
		b.sendProgress(progress, roundCompleteUpdate(RoundSummary{
			Round:    state.round,
			Searched: len(batch),
			Found:    len(state.found),
			Failed:   len(state.failed),
			Pending:  pending,
		}, plan.target, plan.maxSearches))

		batch, state = state.nextBatch(plan, b.sampler)
		if !state.proceed(plan, batch) {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("playlist build cancelled: %w", err)
	}

	// Error density is checked before the song count: a build that reached its target
	// while hitting the threshold still fails.
	if len(state.failed) >= plan.threshold {
		last := state.failed[len(state.failed)-1]
		return nil, fmt.Errorf("%w: %d of %d searches failed, last: %v",
			shared.ErrPlaylistGeneral, len(state.failed), state.searched(), last)
	}

	b.sendProgress(progress, assemblingUpdate(len(state.found)))
	playlist := AssemblePlaylist(b.name, state.found, plan.target)

	if float64(playlist.Len())/float64(plan.target) <= b.minSongFraction {
		return nil, fmt.Errorf("%w: found %d of %d songs", shared.ErrNotEnoughSongs, playlist.Len(), plan.target)
	}

	logger.Info("playlist assembled", "songs", playlist.Len(), "rounds", state.round, "failed", len(state.failed))
	b.sendProgress(progress, assembledUpdate(&playlist, plan.target))
	return &playlist, nil
}

func (b *PlaylistBuilder) observeRound(d time.Duration, outcomes []SearchOutcome) {
	if b.recorder == nil {
		return
	}
	b.recorder.ObserveRound(d)
	for _, o := range outcomes {
		b.recorder.ObserveSearch(o)
	}
}

func (b *PlaylistBuilder) logRound(logger *log.Logger, state searchState, batch []models.Contact, results map[string]SearchResult) {
	for _, contact := range batch {
		r, ok := results[contact.ID]
		switch {
		case !ok:
			logger.Debug("search unresolved", "contact", contact.ID, "term", contact.SearchTerm())
		case r.Err != nil:
			logger.Warn("search failed", "contact", contact.ID, "term", contact.SearchTerm(), "error", r.Err)
		case len(r.Songs) == 0:
			logger.Debug("no songs found", "contact", contact.ID, "term", contact.SearchTerm())
		}
	}
	logger.Debug("round complete", "round", state.round, "found", len(state.found), "failed", len(state.failed))
}

// uniqueContacts drops repeated contact IDs, keeping the first occurrence.
func uniqueContacts(contacts []models.Contact) []models.Contact {
	seen := make(map[string]bool, len(contacts))
	unique := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		unique = append(unique, c)
	}
	return unique
}
