// Package sqlite provides a SQLite-backed implementation of journal.Repository.
//
// WAL mode is enabled on Open so the HTTP history endpoint can read while
// sessions keep appending.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal"

	// Pure-Go driver, no CGO needed for the Alpine image.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_journal (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- One session produces many rows, one per transition.
    session_id  TEXT NOT NULL,

    event       TEXT NOT NULL,
    from_state  TEXT NOT NULL,
    to_state    TEXT NOT NULL,

    -- JSON document, NULL when the event carries nothing.
    detail      TEXT,

    errors      TEXT NOT NULL DEFAULT '[]',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    -- RFC3339 TEXT, SQLite has no datetime type.
    at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_journal_session ON checkout_journal(session_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_journal_trace ON checkout_journal(trace_id);
`

// Repository is the SQLite implementation of journal.Repository.
type Repository struct {
	db *sql.DB
}

var _ journal.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Append inserts a journal row. It is safe to call concurrently.
func (r *Repository) Append(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO checkout_journal
			(session_id, event, from_state, to_state, detail, errors, trace_id, span_id, at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SessionID,
		entry.Event,
		entry.From,
		entry.To,
		nullableString(entry.Detail),
		entry.Errors,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.At),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append journal entry for %q: %w", entry.SessionID, err)
	}
	return nil
}

// History returns the entries of a session in insertion order.
func (r *Repository) History(ctx context.Context, sessionID string) ([]journal.Entry, error) {
	const q = `
		SELECT session_id, event, from_state, to_state, COALESCE(detail,''), errors,
		       trace_id, span_id, at
		FROM   checkout_journal
		WHERE  session_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sessionID, err)
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var at string
		if err := rows.Scan(&e.SessionID, &e.Event, &e.From, &e.To, &e.Detail, &e.Errors, &e.TraceID, &e.SpanID, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scan journal row: %w", err)
		}
		if e.At, err = parseRFC3339(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sessionID, err)
	}
	return out, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
