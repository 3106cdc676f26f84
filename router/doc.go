// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Draw API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, parser, labelGenerator)

A nil parser uses roster.DefaultKeywords and a nil generator names
groups "<FallbackLabel> N".

# Endpoints

Health:

	GET /health

Import screen (no session needed):

	GET  /themes         - Preset grouping themes
	POST /rosters/parse  - Preview parsed names and duplicates
	POST /rosters/dedupe - Remove duplicate names

Sessions:

	POST   /sessions             - Confirm a roster, returns session_key
	POST   /sessions/upload      - Same, from a .csv/.txt upload
	GET    /sessions/{id}        - Roster, pool, history and groups
	PUT    /sessions/{id}/roster - Replace the roster
	DELETE /sessions/{id}        - Clear all data

Lucky draw:

	POST /sessions/{id}/draw        - Draw one name
	POST /sessions/{id}/mode        - Toggle repeat mode
	POST /sessions/{id}/reset       - Refill the pool, clear history
	GET  /sessions/{id}/history.csv - Export draw history

Grouping:

	POST /sessions/{id}/groups     - Shuffle into labelled groups
	GET  /sessions/{id}/groups     - Latest grouping
	GET  /sessions/{id}/groups.csv - Export groups

Every /sessions/{id} route requires the X-Session-Key header.

# Middleware

Session and import endpoints are wrapped with WithLogging. The server
wraps the whole mux with CORS.
*/
package router
