package storage

import "database/sql"

// migrateV001 creates the initial visits schema. The id column is the
// tiebreaker for equal atimes, so it must stay a rowid alias: rowids
// are assigned in insertion order and never reshuffled.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visits (
			id       INTEGER PRIMARY KEY,
			url      TEXT NOT NULL,
			title    TEXT NOT NULL DEFAULT '',
			atime    INTEGER NOT NULL,
			redirect BOOLEAN NOT NULL DEFAULT 0
		)`,

		// Backward scans of this index yield (atime DESC, id DESC),
		// the page ordering.
		`CREATE INDEX IF NOT EXISTS idx_visits_atime ON visits(atime, id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
