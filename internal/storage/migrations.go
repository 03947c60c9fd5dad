package storage

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order; index i upgrades the schema from
// version i to i+1. The current version lives in SQLite's
// user_version pragma.
var migrations = []func(tx *sql.Tx) error{
	migrateV001,
}

// MigrationRunner brings a history database up to the current schema
// version.
type MigrationRunner struct {
	db *sql.DB
}

// NewMigrationRunner creates a MigrationRunner for db.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

// Run applies all pending migrations in order. It enables WAL mode and
// sets a busy timeout so the daemon and CLI can share the file, then
// applies each migration the user_version pragma has not recorded yet.
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := r.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}

	version, err := r.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)",
			version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		if err := r.apply(v); err != nil {
			return fmt.Errorf("apply migration %d: %w", v+1, err)
		}
	}

	return nil
}

// Version reports the database's current schema version.
func (r *MigrationRunner) Version() (int, error) {
	var v int
	err := r.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// apply executes one migration inside a transaction and bumps the
// recorded version with it.
func (r *MigrationRunner) apply(v int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := migrations[v](tx); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}
