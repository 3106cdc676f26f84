// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Draw API.

# Handler Types

  - RosterHandler: Stateless import previews (parse, dedupe, themes)
  - SessionHandler: Session lifecycle (create, upload, view, edit roster, clear)
  - DrawHandler: Lucky draw, repeat mode, reset and history export
  - GroupHandler: Auto grouping and group export

Handlers that touch sessions take the database, config and a shared
db.SessionLocks, so a draw and a reset on the same session never
interleave:

	locks := db.NewSessionLocks()
	drawHandler := handlers.NewDrawHandler(db, cfg, locks, reel)

# Sessions

A session holds one confirmed roster, its draw pool and history, the
repeat mode, and at most one grouping:

	POST /sessions          → CreateSession (returns session_key)
	POST /sessions/upload   → UploadRoster (.csv/.txt, UTF-8)
	PUT  /sessions/{id}/roster → ReplaceRoster (draws and groups start over)

A roster with duplicate names is refused with 409 and the duplicate
list unless allow_duplicates is set. Every /sessions/{id} route requires
the X-Session-Key header.

# Drawing

	POST /sessions/{id}/draw  → Draw (winner plus reel frames)
	POST /sessions/{id}/mode  → SetMode
	POST /sessions/{id}/reset → Reset

Without repeat mode each name is drawn once; an empty pool answers 409.

# Grouping

	POST /sessions/{id}/groups → CreateGroups

Group size must be between 2 and the roster size. Labels come from the
configured generator; any group it fails to name gets the fallback label.
*/
package handlers
