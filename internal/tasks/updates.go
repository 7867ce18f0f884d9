package tasks

import (
	"fmt"

	"github.com/desertthunder/tunename/internal/models"
)

// ProgressUpdate represents a progress event during a playlist build.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// RoundSummary is attached to [SearchRound] updates once a round has been folded in.
type RoundSummary struct {
	Round    int // 1-based round number
	Searched int // Contacts in this round's batch
	Found    int // Contacts with songs so far
	Failed   int // Contacts whose search failed so far
	Pending  int // Contacts in this round that did not resolve in time
}

// Operation phase enumeration
type Phase int

const (
	LoadContacts Phase = iota
	SearchRound
	AssemblePhase
	SavePlaylist
	PublishPlaylist
)

func (p Phase) String() string {
	switch p {
	case LoadContacts:
		return "load_contacts"
	case SearchRound:
		return "search_round"
	case AssemblePhase:
		return "assemble_playlist"
	case SavePlaylist:
		return "save_playlist"
	case PublishPlaylist:
		return "publish_playlist"
	default:
		return ""
	}
}

func loadingContactsUpdate(filtered bool) ProgressUpdate {
	msg := "Loading contacts..."
	if filtered {
		msg = "Loading filtered contacts..."
	}
	return ProgressUpdate{Phase: LoadContacts, Step: 0, Total: 1, Message: msg}
}

func contactsLoadedUpdate(eligible, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadContacts,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d of %d contacts have a first name to search", eligible, total),
	}
}

func roundStartedUpdate(round, batch, maxSearches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchRound,
		Step:    round,
		Total:   maxSearches,
		Message: fmt.Sprintf("Round %d: searching songs for %d contacts...", round, batch),
	}
}

func roundCompleteUpdate(summary RoundSummary, target, maxSearches int) ProgressUpdate {
	return ProgressUpdate{
		Phase: SearchRound,
		Step:  summary.Round,
		Total: maxSearches,
		Message: fmt.Sprintf(
			"Round %d: %d/%d contacts with songs, %d failed, %d pending",
			summary.Round, summary.Found, target, summary.Failed, summary.Pending,
		),
		Data: summary,
	}
}

func assemblingUpdate(contacts int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePhase,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Interleaving songs from %d contacts...", contacts),
	}
}

func assembledUpdate(pl *models.Playlist, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist assembled: %s (%d/%d songs)", pl.Name, pl.Len(), target),
		Data:    pl,
	}
}

func savedUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist saved to history (ID: %s)", pl.ID),
	}
}

func publishingUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PublishPlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Saving playlist to %s...", service),
	}
}

func publishedUpdate(location string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PublishPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist published: %s", location),
	}
}
