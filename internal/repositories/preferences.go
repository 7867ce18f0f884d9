package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunename/internal/models"
)

const playlistPreferencesKey = "playlist"

// PreferencesRepository stores the user's playlist preferences as a JSON document.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new PreferencesRepository with the given database connection
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Load returns the saved preferences, or nil when none have been saved.
func (r *PreferencesRepository) Load() (*models.PlaylistPreferences, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, playlistPreferencesKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs models.PlaylistPreferences
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

// LoadOrDefault returns the saved preferences, falling back to [models.DefaultPlaylistPreferences].
func (r *PreferencesRepository) LoadOrDefault() (models.PlaylistPreferences, error) {
	prefs, err := r.Load()
	if err != nil {
		return models.DefaultPlaylistPreferences(), err
	}
	if prefs == nil {
		return models.DefaultPlaylistPreferences(), nil
	}
	return *prefs, nil
}

// Save validates and stores prefs, replacing any previous value.
func (r *PreferencesRepository) Save(prefs models.PlaylistPreferences) error {
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, playlistPreferencesKey, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Reset removes the saved preferences.
func (r *PreferencesRepository) Reset() error {
	if _, err := r.db.Exec(`DELETE FROM preferences WHERE key = ?`, playlistPreferencesKey); err != nil {
		return fmt.Errorf("failed to reset preferences: %w", err)
	}
	return nil
}
