package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	kvTable     = "kv_entries"
	eventsTable = "session_events"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT    NOT NULL PRIMARY KEY,
		value      BLOB    NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence    INTEGER NOT NULL UNIQUE,
		timestamp   INTEGER NOT NULL,
		session_id  TEXT    NOT NULL,
		action      TEXT    NOT NULL,
		stream      TEXT    NOT NULL DEFAULT '',
		question_id TEXT    NOT NULL DEFAULT '',
		answers     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session_id ON session_events (session_id)`,
	`CREATE INDEX IF NOT EXISTS session_events_timestamp ON session_events (timestamp)`,
}

// migrate creates the key-value and event tables if they are missing.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
