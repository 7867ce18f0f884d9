package repositories

import (
	"database/sql"
	"fmt"
)

// sequenceTables maps entity tables to their counter tables.
var sequenceTables = map[string]string{
	"contacts":  "contacts_sequence",
	"playlists": "playlists_sequence",
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers order contacts by import and playlists by build (e.g., contact #42, playlist #15).
func NextSequence(db *sql.DB, table string) (int, error) {
	sequenceTable, ok := sequenceTables[table]
	if !ok {
		return 0, fmt.Errorf("no sequence table for %q", table)
	}

	var sequence int
	err := db.QueryRow("UPDATE " + sequenceTable + " SET value = value + 1 WHERE id = 1 RETURNING value").Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
