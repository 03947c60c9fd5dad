package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/runnerr0/lookback/internal/history"
)

// defaultQueryLimit bounds page queries that arrive without a limit.
const defaultQueryLimit = 300

// Source provides ordered history pages to the data endpoint.
//
// EntriesBefore must order entries newest first and, among equal
// timestamps, identically across calls: the pagination protocol skips
// already-served boundary entries by offset, which only works when
// every request slices the same ordering.
type Source interface {
	// EntriesBefore returns up to limit non-redirect entries with
	// time <= startTime, newest first, skipping the first offset
	// matches.
	EntriesBefore(ctx context.Context, startTime int64, offset, limit int) ([]history.Entry, error)

	// Add stores one visit.
	Add(ctx context.Context, rec Record) error

	// AddBatch stores visits in one transaction and returns the
	// number stored. Records without a URL are skipped.
	AddBatch(ctx context.Context, recs []Record) (int64, error)

	// Stats returns aggregate statistics about the stored history.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// SQLiteSource implements Source backed by a SQLite database. Ties on
// atime are broken by id descending; since id is the rowid, the order
// among equal timestamps is fixed at insertion and stable across
// requests.
type SQLiteSource struct {
	db *sql.DB

	// Prepared statements
	entriesBefore *sql.Stmt
	insertVisit   *sql.Stmt
}

// NewSQLiteSource creates a SQLiteSource from an already-opened and
// migrated database.
func NewSQLiteSource(db *sql.DB) (*SQLiteSource, error) {
	s := &SQLiteSource{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteSource) prepareStatements() error {
	var err error

	s.entriesBefore, err = s.db.Prepare(`
		SELECT url, title, atime FROM visits
		WHERE atime <= ? AND NOT redirect
		ORDER BY atime DESC, id DESC
		LIMIT ? OFFSET ?
	`)
	if err != nil {
		return err
	}

	s.insertVisit, err = s.db.Prepare(`
		INSERT INTO visits (url, title, atime, redirect)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// EntriesBefore returns one page of served history.
func (s *SQLiteSource) EntriesBefore(ctx context.Context, startTime int64, offset, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.entriesBefore.QueryContext(ctx, startTime, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	// Empty slice rather than nil: the endpoint serializes this as [].
	entries := []history.Entry{}
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.URL, &e.Title, &e.Time); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Add stores one visit. A zero Time is filled with the current time.
func (s *SQLiteSource) Add(ctx context.Context, rec Record) error {
	if rec.URL == "" {
		return fmt.Errorf("add visit: url is required")
	}
	if rec.Time == 0 {
		rec.Time = time.Now().Unix()
	}

	if _, err := s.insertVisit.ExecContext(ctx, rec.URL, rec.Title, rec.Time, rec.Redirect); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// AddBatch stores visits in a single transaction.
func (s *SQLiteSource) AddBatch(ctx context.Context, recs []Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt := tx.StmtContext(ctx, s.insertVisit)
	defer stmt.Close()

	var n int64
	for _, rec := range recs {
		if rec.URL == "" {
			continue
		}
		if rec.Time == 0 {
			rec.Time = time.Now().Unix()
		}
		if _, err := stmt.ExecContext(ctx, rec.URL, rec.Title, rec.Time, rec.Redirect); err != nil {
			return 0, fmt.Errorf("insert visit: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Stats returns aggregate statistics about the database.
func (s *SQLiteSource) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(redirect), 0) FROM visits",
	).Scan(&stats.TotalVisits, &stats.Redirects)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalVisits > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx, "SELECT MIN(atime), MAX(atime) FROM visits").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("visit time range: %w", err)
		}
		stats.OldestVisit = time.Unix(oldest, 0)
		stats.NewestVisit = time.Unix(newest, 0)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	return stats, nil
}

// Close releases the prepared statements. The underlying *sql.DB is
// not closed; that is the caller's responsibility.
func (s *SQLiteSource) Close() error {
	for _, stmt := range []*sql.Stmt{s.entriesBefore, s.insertVisit} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
