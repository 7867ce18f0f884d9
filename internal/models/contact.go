package models

import (
	"fmt"
	"strings"
)

// Contact is a person from the user's address book.
//
// Only FirstName matters for playlist building; two contacts are the same when their IDs match.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// SearchTerm returns the trimmed first name used as a song-title query.
func (c Contact) SearchTerm() string {
	return strings.TrimSpace(c.FirstName)
}

// Searchable reports whether the contact has a non-blank first name.
func (c Contact) Searchable() bool {
	return c.SearchTerm() != ""
}

// DisplayName returns the full name, falling back to "first last".
func (c Contact) DisplayName() string {
	if name := strings.TrimSpace(c.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// SearchableContacts returns the contacts with a non-blank first name, preserving order.
func SearchableContacts(contacts []Contact) []Contact {
	eligible := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Searchable() {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// PersistedContact is a [Contact] stored in the local database.
//
// The embedded contact's ID is the address book identifier; ID() is the row identifier.
type PersistedContact struct {
	record
	contact  Contact
	filtered bool
}

var _ Model = (*PersistedContact)(nil)

// NewPersistedContact wraps contact for persistence.
func NewPersistedContact(sequence int, contact Contact) *PersistedContact {
	return &PersistedContact{record: newRecord(sequence), contact: contact}
}

func (p *PersistedContact) Contact() Contact     { return p.contact }
func (p *PersistedContact) ExternalID() string   { return p.contact.ID }
func (p *PersistedContact) Filtered() bool       { return p.filtered }
func (p *PersistedContact) SetFiltered(f bool)   { p.filtered = f }
func (p *PersistedContact) SetContact(c Contact) { p.contact = c }

// Validate checks the contact has an address book identifier.
func (p *PersistedContact) Validate() error {
	if strings.TrimSpace(p.contact.ID) == "" {
		return fmt.Errorf("contact id is required")
	}
	return nil
}
