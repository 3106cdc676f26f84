// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-draw/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoGroups        = errors.New("session has no groups")
)

// InsertSession stores a new session with an empty history
func InsertSession(ctx context.Context, db *sql.DB, s models.Session) error {
	roster, err := encodeNames(s.Roster)
	if err != nil {
		return err
	}
	pool, err := encodeNames(s.Pool)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO draw_session (id, roster, pool, repeat_mode, ip_hash, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, roster, pool, s.RepeatMode, s.IPHash, s.CreatedAt, s.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession loads a session and its history (most recent first)
func GetSession(ctx context.Context, db *sql.DB, id string) (models.Session, error) {
	var s models.Session
	var roster, pool string
	err := db.QueryRowContext(ctx, `
		SELECT id, roster, pool, repeat_mode, ip_hash, created_at, last_seen_at
		FROM draw_session
		WHERE id = $1
	`, id).Scan(&s.ID, &roster, &pool, &s.RepeatMode, &s.IPHash, &s.CreatedAt, &s.LastSeenAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	if s.Roster, err = decodeNames(roster); err != nil {
		return models.Session{}, err
	}
	if s.Pool, err = decodeNames(pool); err != nil {
		return models.Session{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT name FROM draw_record
		WHERE session_id = $1
		ORDER BY seq DESC
	`, id)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	s.History = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return models.Session{}, fmt.Errorf("failed to scan history: %w", err)
		}
		s.History = append(s.History, name)
	}
	if err := rows.Err(); err != nil {
		return models.Session{}, fmt.Errorf("failed to read history: %w", err)
	}

	return s, nil
}

// CountSessionsByIP returns how many live sessions were created from
// the hashed client address
func CountSessionsByIP(ctx context.Context, db *sql.DB, ipHash string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM draw_session WHERE ip_hash = $1`, ipHash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// TouchSession marks the session as used now
func TouchSession(ctx context.Context, db *sql.DB, id string, now time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE draw_session SET last_seen_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return requireRow(res)
}

// SaveDraw appends a draw to the history and stores the new pool and mode.
// The record's sequence number is assigned here and returned.
func SaveDraw(ctx context.Context, db *sql.DB, pool []string, repeatMode bool, rec models.DrawRecord) (models.DrawRecord, error) {
	poolJSON, err := encodeNames(pool)
	if err != nil {
		return models.DrawRecord{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.DrawRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE draw_session
		SET pool = $1, repeat_mode = $2, last_seen_at = $3
		WHERE id = $4
	`, poolJSON, repeatMode, rec.DrawnAt, rec.SessionID)
	if err != nil {
		return models.DrawRecord{}, fmt.Errorf("failed to update pool: %w", err)
	}
	if err := requireRow(res); err != nil {
		return models.DrawRecord{}, err
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM draw_record WHERE session_id = $1
	`, rec.SessionID).Scan(&rec.Seq); err != nil {
		return models.DrawRecord{}, fmt.Errorf("failed to compute draw sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO draw_record (id, session_id, seq, name, drawn_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.SessionID, rec.Seq, rec.Name, rec.DrawnAt)
	if err != nil {
		return models.DrawRecord{}, fmt.Errorf("failed to insert draw: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.DrawRecord{}, fmt.Errorf("failed to commit draw: %w", err)
	}
	return rec, nil
}

// SetRepeatMode switches the session's draw mode
func SetRepeatMode(ctx context.Context, db *sql.DB, id string, repeatMode bool, now time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE draw_session SET repeat_mode = $1, last_seen_at = $2 WHERE id = $3
	`, repeatMode, now, id)
	if err != nil {
		return fmt.Errorf("failed to set repeat mode: %w", err)
	}
	return requireRow(res)
}

// ResetDraws clears the history and refills the pool
func ResetDraws(ctx context.Context, db *sql.DB, id string, pool []string, now time.Time) error {
	return replaceState(ctx, db, id, nil, pool, false, now)
}

// ReplaceRoster swaps in a new roster. History and groups belong to
// the old roster and are dropped.
func ReplaceRoster(ctx context.Context, db *sql.DB, id string, roster []string, now time.Time) error {
	return replaceState(ctx, db, id, roster, roster, true, now)
}

func replaceState(ctx context.Context, db *sql.DB, id string, roster, pool []string, dropGroups bool, now time.Time) error {
	poolJSON, err := encodeNames(pool)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if roster != nil {
		rosterJSON, err := encodeNames(roster)
		if err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE draw_session SET roster = $1, pool = $2, last_seen_at = $3 WHERE id = $4
		`, rosterJSON, poolJSON, now, id)
		if err != nil {
			return fmt.Errorf("failed to update roster: %w", err)
		}
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE draw_session SET pool = $1, last_seen_at = $2 WHERE id = $3
		`, poolJSON, now, id)
		if err != nil {
			return fmt.Errorf("failed to reset pool: %w", err)
		}
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM draw_record WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if dropGroups {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_run WHERE session_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear groups: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// SaveGroupRun replaces the session's grouping
func SaveGroupRun(ctx context.Context, db *sql.DB, run models.GroupRun) error {
	payload, err := json.Marshal(run.Groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE draw_session SET last_seen_at = $1 WHERE id = $2`, run.ComputedAt, run.SessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_run WHERE session_id = $1`, run.SessionID); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_run (session_id, group_size, theme, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, run.SessionID, run.GroupSize, run.Theme, run.ComputedAt, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert groups: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit groups: %w", err)
	}
	return nil
}

// GetGroupRun loads the latest grouping for a session
func GetGroupRun(ctx context.Context, db *sql.DB, id string) (models.GroupRun, error) {
	var run models.GroupRun
	var payload string
	err := db.QueryRowContext(ctx, `
		SELECT session_id, group_size, theme, computed_at, payload
		FROM group_run
		WHERE session_id = $1
	`, id).Scan(&run.SessionID, &run.GroupSize, &run.Theme, &run.ComputedAt, &payload)
	if err == sql.ErrNoRows {
		return models.GroupRun{}, ErrNoGroups
	}
	if err != nil {
		return models.GroupRun{}, fmt.Errorf("failed to query groups: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &run.Groups); err != nil {
		return models.GroupRun{}, fmt.Errorf("failed to decode groups: %w", err)
	}
	return run, nil
}

// DeleteSession removes a session and everything attached to it
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// SQLite only cascades with foreign_keys on, so children go first
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_run WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete groups: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM draw_record WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM draw_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// SweepExpired deletes sessions idle since before the cutoff and
// returns how many were removed
func SweepExpired(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM group_run
		WHERE session_id IN (SELECT id FROM draw_session WHERE last_seen_at < $1)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to sweep groups: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM draw_record
		WHERE session_id IN (SELECT id FROM draw_session WHERE last_seen_at < $1)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to sweep history: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM draw_session WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}
	return n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode names: %w", err)
	}
	return string(b), nil
}

func decodeNames(s string) ([]string, error) {
	names := []string{}
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return nil, fmt.Errorf("failed to decode names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
