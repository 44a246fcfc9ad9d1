// Package store keeps a history of reductions in SQLite so strategies can be
// compared across invocations of the CLI.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ib-77/gridsum/pkg/reduce"
)

//go:embed schema.sql
var schemaSQL string

// Run is one stored reduction.
type Run struct {
	ID          string
	Strategy    string
	Workers     int
	Rows        int
	Fingerprint string
	Total       float64
	Degraded    int
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// FromReport converts a reduction report into a Run. fingerprint identifies
// the grid (see grid.Fingerprint).
func FromReport(r reduce.Report, fingerprint uint64, now time.Time) Run {
	return Run{
		ID:          r.RunID.String(),
		Strategy:    r.Strategy.String(),
		Workers:     r.Workers,
		Rows:        r.Rows,
		Fingerprint: fmt.Sprintf("%016x", fingerprint),
		Total:       r.Total,
		Degraded:    len(r.Degraded),
		Elapsed:     r.Elapsed,
		CreatedAt:   now.UTC(),
	}
}

// Store provides durable storage for reduction runs.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. It is safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts runs in a single transaction.
func (s *Store) Record(ctx context.Context, runs ...Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (id, strategy, workers, row_count, fingerprint, total, degraded, elapsed_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range runs {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Strategy, r.Workers, r.Rows, r.Fingerprint,
			r.Total, r.Degraded, r.Elapsed.Nanoseconds(), r.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("insert run %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Strategy    string
	Fingerprint string
	Limit       int
}

// List returns stored runs, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	query := `SELECT id, strategy, workers, row_count, fingerprint, total, degraded, elapsed_ns, created_at
		FROM runs WHERE (? = '' OR strategy = ?) AND (? = '' OR fingerprint = ?)
		ORDER BY created_at DESC, id`
	args := []any{f.Strategy, f.Strategy, f.Fingerprint, f.Fingerprint}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var elapsed, created int64
		if err := rows.Scan(&r.ID, &r.Strategy, &r.Workers, &r.Rows, &r.Fingerprint,
			&r.Total, &r.Degraded, &elapsed, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Elapsed = time.Duration(elapsed)
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
