// Package repositories implements SQLite persistence for contacts, preferences, playlist history and the search cache.
//
// Contact and playlist repositories implement models.Repository with atomic sequence generation and soft deletes
// via deleted_at timestamps; deleted records are excluded from queries by default.
//
// Key Implementations:
//   - [ContactRepository] : the local address book, keyed by address book identifier, with the saved filter selection
//   - [PreferencesRepository] : playlist preferences stored as a single JSON document
//   - [PlaylistRepository] : built playlists with their entries, newest first
//   - [SearchCacheRepository] : a cache.Cache for song searches with unix-time expiry
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
