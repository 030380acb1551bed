// Package audit records every dispatched utterance in SQLite.
//
// The log is an operator aid, not a persistence feature: the default database
// path is ":memory:", so nothing outlives the process unless a file path is
// configured. Writing an entry is best-effort from the caller's point of
// view: an audit failure is logged and the chat request still succeeds.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultPath keeps the audit log in memory for the lifetime of the process.
const DefaultPath = ":memory:"

// Entry is one dispatched request.
type Entry struct {
	ID        int64
	RequestID string
	Message   string
	Intent    string
	Reply     string
	CreatedAt time.Time
}

// Store wraps the audit database connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at path and bootstraps the
// schema. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	// A single shared connection lets database/sql serialize concurrent
	// writers instead of surfacing lock errors, and keeps an in-memory
	// database visible to every caller.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			message    TEXT NOT NULL,
			intent     TEXT NOT NULL,
			reply      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dispatches table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry to the log. CreatedAt defaults to now when zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches (request_id, message, intent, reply, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.RequestID, e.Message, e.Intent, e.Reply, createdAt)
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, message, intent, reply, created_at
		FROM dispatches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Message, &e.Intent, &e.Reply, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of recorded dispatches.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}
