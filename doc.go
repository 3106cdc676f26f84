// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Draw API server.

Quickly Draw backs an HR event tool: paste or upload a roster, draw
winners one at a time (with or without repeats), and shuffle the roster
into themed groups named by an LLM.

# Starting the Server

The only required setting is the session key salt:

	SESSION_KEY_SALT=change-me go run .

Or with flags:

	go run . -p 3318 --session-salt change-me --gemini-key $GEMINI_API_KEY

Settings are also read from a .env file in the working directory.

# Configuration

Required settings:

  - SESSION_KEY_SALT (--session-salt): Secret for session key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: in-memory SQLite)
  - GEMINI_API_KEY (--gemini-key): Enables generated group names
  - GEMINI_MODEL (--gemini-model), GEMINI_BASE_URL (--gemini-url)
  - LABEL_TIMEOUT (--label-timeout): Bound on label generation (default: 15s)
  - FALLBACK_LABEL (--fallback-label): Prefix for unnamed groups (default: Group)
  - KEYWORDS_FILE (--keywords): YAML list of roster header keywords
  - SESSION_TTL (--session-ttl): Idle time before a session is dropped (default: 12h)
  - MAX_SESSIONS_PER_IP (--max-sessions-per-ip): Live sessions allowed per client address (default: 50)

# Architecture

  - roster: Name extraction, duplicate detection
  - draw: Draw engine and the cosmetic reel
  - grouping: Shuffle and partition into labelled groups
  - labels: Static and Gemini group label generators
  - export: CSV exports
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and CSV helpers
  - models: Request/response types
  - auth: Session IDs and keys
  - db: Schema, session storage, expiry sweeper
  - cliparse: Configuration parsing

The HTTP server and the session sweeper run under one errgroup and stop
together on SIGINT or SIGTERM.
*/
package main
