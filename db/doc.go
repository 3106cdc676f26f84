// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and session storage.

# Connections

Open supports SQLite (modernc.org/sqlite, the default) and PostgreSQL
(github.com/lib/pq):

	conn, err := db.Open("sqlite", "file:quickly-draw?mode=memory&cache=shared")

SQLite connections are capped at one so an in-memory database lives
as long as the pool.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - draw_session: roster, remaining pool (JSON arrays), repeat mode
  - draw_record: one row per settled draw, numbered by seq
  - group_run: the latest grouping per session (JSON payload)

# Relationships

	draw_session 1──* draw_record
	draw_session 1──1 group_run

Children are deleted explicitly, since SQLite ignores ON DELETE CASCADE
unless foreign keys are switched on.

# Session Lifetime

Sessions are not kept beyond their use. DeleteSession drops one
immediately and SweepExpired drops every session idle since a cutoff.
RunSweeper calls it on a ticker until its context ends:

	g.Go(func() error { return db.RunSweeper(ctx, conn, cfg.SessionTTL) })

# Concurrency

SessionLocks serializes the load-modify-save cycle of a session, so two
concurrent draws never take the same pool entry:

	unlock := locks.Lock(sessionID)
	defer unlock()
*/
package db
