// Package models defines domain entities and persistence interfaces for the contact playlist builder.
//
// The package contains two categories of types:
//
// 1. Domain values passed between the builder, the search backend and the outer surfaces
//   - [Contact] : An address book entry; its first name is the search term
//   - [Song] : A catalog track, de-duplicated by [Song.Key]
//   - [PlaylistPreferences] / [SongPreferences] : Inputs to a build
//   - [Playlist] : Ordered (song, contact) entries produced by a build
//   - [ContactSongs] / [ContactError] : Per-contact search outcomes
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedContact] : Imported contacts with the saved filter selection
//   - [PersistedPlaylist] : Playlist history
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
