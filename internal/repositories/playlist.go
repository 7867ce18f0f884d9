package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

const playlistColumns = `id, sequence, name, location, target_count, song_count, created_at, updated_at, deleted_at`

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist] for the build history.
//
// Entries are stored in playlist_entries in playlist order together with the contact that found each song.
type PlaylistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedPlaylist] = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a playlist and its entries in one transaction, with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	id := shared.GenerateID()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, sequence, name, location, target_count, song_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, id, sequence, playlist.Name(), playlist.Location(), playlist.TargetCount(),
		playlist.SongCount(), playlist.CreatedAt(), playlist.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO playlist_entries (
			playlist_id, position, song_id, song_uri, title, artist, album, duration_ms,
			contact_id, contact_first_name, contact_full_name
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range playlist.Playlist().Entries {
		_, err := stmt.Exec(id, i, e.Song.ID, e.Song.URI, e.Song.Title, e.Song.Artist, e.Song.Album,
			e.Song.DurationMS, e.Contact.ID, e.Contact.FirstName, e.Contact.FullName)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}

	playlist.SetID(id)
	playlist.SetSequence(sequence)
	return nil
}

// Archive stores a freshly built playlist and sets its ID.
func (r *PlaylistRepository) Archive(playlist *models.Playlist, targetCount int) error {
	persisted := models.NewPersistedPlaylist(0, *playlist, targetCount)
	if err := r.Create(persisted); err != nil {
		return err
	}
	playlist.ID = persisted.ID()
	return nil
}

// Get retrieves a playlist with its entries, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	entries, err := r.entries(id)
	if err != nil {
		return nil, err
	}
	playlist.SetEntries(entries)
	return playlist, nil
}

// Update modifies a playlist's name and location
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`UPDATE playlists SET name = ?, location = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		playlist.Name(), playlist.Location(), now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := expectRows(result, shared.ErrPlaylistNotFound, playlist.ID()); err != nil {
		return err
	}

	playlist.SetUpdatedAt(now)
	return nil
}

// SetLocation records where the playlist was published.
func (r *PlaylistRepository) SetLocation(id, location string) error {
	result, err := r.db.Exec(`UPDATE playlists SET location = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		location, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update playlist location: %w", err)
	}
	return expectRows(result, shared.ErrPlaylistNotFound, id)
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return expectRows(result, shared.ErrPlaylistNotFound, id)
}

// List retrieves playlists newest first, without entries. Supported criteria:
//   - "limit" (int): maximum number of playlists
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL ORDER BY sequence DESC`
	args := []any{}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

func (r *PlaylistRepository) entries(playlistID string) ([]models.PlaylistEntry, error) {
	rows, err := r.db.Query(`
		SELECT song_id, song_uri, title, artist, album, duration_ms, contact_id, contact_first_name, contact_full_name
		FROM playlist_entries
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PlaylistEntry
	for rows.Next() {
		var e models.PlaylistEntry
		err := rows.Scan(&e.Song.ID, &e.Song.URI, &e.Song.Title, &e.Song.Artist, &e.Song.Album, &e.Song.DurationMS,
			&e.Contact.ID, &e.Contact.FirstName, &e.Contact.FullName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

func scanPlaylist(s scanner) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		name        string
		location    string
		targetCount int
		songCount   int
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &name, &location, &targetCount, &songCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, models.Playlist{Name: name, Location: location}, targetCount)
	playlist.SetID(id)
	playlist.SetSongCount(songCount)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}
	return playlist, nil
}
