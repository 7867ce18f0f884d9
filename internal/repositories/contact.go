package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

const contactColumns = `id, sequence, external_id, first_name, last_name, full_name, filtered, created_at, updated_at, deleted_at`

// ContactRepository implements models.Repository[*models.PersistedContact] for the local address book.
//
// Contacts are keyed by their address book identifier (external_id) for imports; the filtered
// flag marks the user's saved selection.
type ContactRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedContact] = (*ContactRepository)(nil)

// NewContactRepository creates a new ContactRepository with the given database connection
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact with generated ID and sequence
func (r *ContactRepository) Create(contact *models.PersistedContact) error {
	if err := contact.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "contacts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	c := contact.Contact()

	query := `
		INSERT INTO contacts (id, sequence, external_id, first_name, last_name, full_name, filtered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, id, sequence, c.ID, c.FirstName, c.LastName, c.FullName,
		contact.Filtered(), contact.CreatedAt(), contact.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	contact.SetID(id)
	contact.SetSequence(sequence)
	return nil
}

// Get retrieves a contact by row ID, excluding soft-deleted contacts
func (r *ContactRepository) Get(id string) (*models.PersistedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetByExternalID retrieves a contact by its address book identifier
func (r *ContactRepository) GetByExternalID(externalID string) (*models.PersistedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE external_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, externalID), externalID)
}

// Update modifies the names and filter flag of an existing contact
func (r *ContactRepository) Update(contact *models.PersistedContact) error {
	if err := contact.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	c := contact.Contact()

	query := `
		UPDATE contacts
		SET first_name = ?, last_name = ?, full_name = ?, filtered = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, c.FirstName, c.LastName, c.FullName, contact.Filtered(), now, contact.ID())
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if err := expectRows(result, shared.ErrContactNotFound, contact.ID()); err != nil {
		return err
	}

	contact.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a contact by row ID
func (r *ContactRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE contacts SET deleted_at = ?, filtered = 0 WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return expectRows(result, shared.ErrContactNotFound, id)
}

// List retrieves contacts in import order. Supported criteria:
//   - "filtered" (bool): only the saved selection
//   - "searchable" (bool): only contacts with a first name
func (r *ContactRepository) List(criteria map[string]any) ([]*models.PersistedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE deleted_at IS NULL`

	if filtered, ok := criteria["filtered"].(bool); ok && filtered {
		query += " AND filtered = 1"
	}
	if searchable, ok := criteria["searchable"].(bool); ok && searchable {
		query += " AND TRIM(first_name) != ''"
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.PersistedContact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return contacts, nil
}

// Contacts returns every stored contact, or only the saved selection when filtered is true.
func (r *ContactRepository) Contacts(filtered bool) ([]models.Contact, error) {
	persisted, err := r.List(map[string]any{"filtered": filtered})
	if err != nil {
		return nil, err
	}
	contacts := make([]models.Contact, 0, len(persisted))
	for _, p := range persisted {
		contacts = append(contacts, p.Contact())
	}
	return contacts, nil
}

// Upsert stores contact keyed by its address book identifier, reviving it if it had been deleted.
// It reports whether a new row was created. The filter flag of existing rows is preserved.
func (r *ContactRepository) Upsert(contact models.Contact) (created bool, err error) {
	var id string
	err = r.db.QueryRow(`SELECT id FROM contacts WHERE external_id = ?`, contact.ID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, r.Create(models.NewPersistedContact(0, contact))
	case err != nil:
		return false, fmt.Errorf("failed to look up contact: %w", err)
	}

	query := `
		UPDATE contacts
		SET first_name = ?, last_name = ?, full_name = ?, updated_at = ?, deleted_at = NULL
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, contact.FirstName, contact.LastName, contact.FullName, time.Now().UTC(), id); err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return false, nil
}

// Import upserts every contact and reports how many were created and updated.
func (r *ContactRepository) Import(contacts []models.Contact) (created, updated int, err error) {
	for _, c := range contacts {
		isNew, err := r.Upsert(c)
		if err != nil {
			return created, updated, fmt.Errorf("contact %s: %w", c.ID, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

// SetFiltered replaces the saved selection with the contacts identified by externalIDs.
//
// The update is atomic: an unknown identifier leaves the previous selection intact.
func (r *ContactRepository) SetFiltered(externalIDs []string) error {
	ids := slices.Compact(slices.Sorted(slices.Values(externalIDs)))

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE contacts SET filtered = 0 WHERE filtered = 1`); err != nil {
		return fmt.Errorf("failed to clear filter: %w", err)
	}

	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}

		result, err := tx.Exec(`UPDATE contacts SET filtered = 1 WHERE deleted_at IS NULL AND external_id IN (`+placeholders+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to set filter: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if int(n) != len(ids) {
			return fmt.Errorf("%w: %d of %d contacts exist", shared.ErrContactNotFound, n, len(ids))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit filter: %w", err)
	}
	return nil
}

// ClearFiltered empties the saved selection.
func (r *ContactRepository) ClearFiltered() error {
	return r.SetFiltered(nil)
}

func (r *ContactRepository) scanOne(row *sql.Row, key string) (*models.PersistedContact, error) {
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrContactNotFound, key)
	}
	return contact, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*models.PersistedContact, error) {
	var (
		id        string
		sequence  int
		c         models.Contact
		filtered  bool
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := s.Scan(&id, &sequence, &c.ID, &c.FirstName, &c.LastName, &c.FullName, &filtered, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	contact := models.NewPersistedContact(sequence, c)
	contact.SetID(id)
	contact.SetFiltered(filtered)
	contact.SetCreatedAt(createdAt)
	contact.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		contact.SetDeletedAt(&deletedAt.Time)
	}
	return contact, nil
}

// expectRows returns notFound wrapped with key when result touched no rows.
func expectRows(result sql.Result, notFound error, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, key)
	}
	return nil
}
