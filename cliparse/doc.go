// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: connection string (default: in-memory sqlite)
  - SessionKeySalt: Secret for session key HMAC (required)
  - GeminiAPIKey: enables AI group names (optional)
  - GeminiModel: model name (default: gemini-3-flash-preview)
  - LabelTimeout: bound on one group-name request (default: 15s)
  - SessionTTL: idle time before a session is swept (default: 12h)
  - KeywordsFile: YAML list of roster header keywords (optional)
  - FallbackLabel: prefix for fallback group names (default: Group)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--session-salt    Session key salt
	--gemini-key      Gemini API key
	--gemini-model    Gemini model
	--gemini-url      Gemini base URL override
	--label-timeout   Group name timeout
	--fallback-label  Fallback group name prefix
	--keywords        Header keywords file
	--session-ttl     Session idle TTL

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	SESSION_KEY_SALT → --session-salt
	GEMINI_API_KEY   → --gemini-key
	GEMINI_MODEL     → --gemini-model
	GEMINI_BASE_URL  → --gemini-url
	LABEL_TIMEOUT    → --label-timeout
	FALLBACK_LABEL   → --fallback-label
	KEYWORDS_FILE    → --keywords
	SESSION_TTL      → --session-ttl

CLI flags take precedence over environment variables. main loads a
.env file (if present) before parsing.

# Validation

ParseFlags returns an error if:

  - SESSION_KEY_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - postgres is selected without DATABASE_URL
  - a duration does not parse, or SESSION_TTL is under a minute
*/
package cliparse
