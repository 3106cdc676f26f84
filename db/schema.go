// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types and syntax shared by SQLite and PostgreSQL.
// Name lists are stored as JSON arrays in TEXT columns.
const schema = `
-- Sessions
CREATE TABLE IF NOT EXISTS draw_session (
    id TEXT PRIMARY KEY,
    roster TEXT NOT NULL,
    pool TEXT NOT NULL,
    repeat_mode BOOLEAN NOT NULL DEFAULT FALSE,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_draw_session_last_seen ON draw_session(last_seen_at);
CREATE INDEX IF NOT EXISTS idx_draw_session_ip_hash ON draw_session(ip_hash);

-- Draw history
CREATE TABLE IF NOT EXISTS draw_record (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES draw_session(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL,
    drawn_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_draw_record_session_id ON draw_record(session_id);

-- Latest grouping per session
CREATE TABLE IF NOT EXISTS group_run (
    session_id TEXT PRIMARY KEY REFERENCES draw_session(id) ON DELETE CASCADE,
    group_size INTEGER NOT NULL CHECK (group_size >= 2),
    theme TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload TEXT NOT NULL
);
`
