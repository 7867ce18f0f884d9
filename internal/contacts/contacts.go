// Package contacts loads the address book a playlist build draws from.
//
// [Source] serves contacts to the playlist builder from a [Store]; [ImportCSV] reads an address book export.
package contacts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/google/uuid"
)

// Store lists stored contacts.
type Store interface {
	// Contacts returns every contact, or only the saved selection when filtered is true.
	Contacts(filtered bool) ([]models.Contact, error)
}

// Source implements the playlist builder's contact source over a [Store].
type Source struct {
	store Store
}

// NewSource creates a Source reading from store.
func NewSource(store Store) *Source {
	return &Source{store: store}
}

// Retrieve returns contacts deduplicated by ID, keeping the first occurrence.
//
// A store failure wraps [shared.ErrContactsUnavailable]; an empty result is not an error.
func (s *Source) Retrieve(ctx context.Context, filtered bool) ([]models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contacts, err := s.store.Contacts(filtered)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrContactsUnavailable, err)
	}

	seen := make(map[string]bool, len(contacts))
	return slices.DeleteFunc(contacts, func(c models.Contact) bool {
		if seen[c.ID] {
			return true
		}
		seen[c.ID] = true
		return false
	}), nil
}

// Static is a fixed contact list, for builds that do not use the local store.
type Static []models.Contact

// Contacts returns the list; filtering selects nothing beyond it.
func (s Static) Contacts(filtered bool) ([]models.Contact, error) {
	return slices.Clone(s), nil
}

var csvColumns = map[string][]string{
	"id":         {"id", "contact_id", "identifier"},
	"first_name": {"first_name", "first name", "given_name", "given name"},
	"last_name":  {"last_name", "last name", "family_name", "family name"},
	"full_name":  {"full_name", "full name", "name", "display_name", "display name"},
}

// ImportCSV reads contacts from a CSV export with a header row.
//
// Recognized columns are id, first_name, last_name and full_name (with common aliases such as
// "Given Name"); other columns are ignored. A first_name or full_name column is required.
// Rows without an id get a generated one; rows without a full name get "first last".
// Blank rows are skipped.
func ImportCSV(r io.Reader) ([]models.Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty contacts file", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := headerIndex(header)
	_, hasFirst := index["first_name"]
	_, hasFull := index["full_name"]
	if !hasFirst && !hasFull {
		return nil, fmt.Errorf("%w: CSV needs a first_name or full_name column", shared.ErrInvalidInput)
	}

	var contacts []models.Contact
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		c := models.Contact{
			ID:        field("id"),
			FirstName: field("first_name"),
			LastName:  field("last_name"),
			FullName:  field("full_name"),
		}
		if c.FirstName == "" && c.LastName == "" && c.FullName == "" {
			continue
		}
		if c.FirstName == "" && !hasFirst {
			c.FirstName, _, _ = strings.Cut(c.FullName, " ")
		}
		if c.FullName == "" {
			c.FullName = strings.TrimSpace(c.FirstName + " " + c.LastName)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for column, aliases := range csvColumns {
			if _, taken := index[column]; taken {
				continue
			}
			if slices.Contains(aliases, h) {
				index[column] = i
			}
		}
	}
	return index
}

// ExportCSV writes contacts with the columns ImportCSV reads.
func ExportCSV(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "first_name", "last_name", "full_name"}); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := writer.Write([]string{c.ID, c.FirstName, c.LastName, c.FullName}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
