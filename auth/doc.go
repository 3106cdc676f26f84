// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session identifiers and keys.

# Session IDs

Sessions are identified by random UUIDs:

	id, err := auth.NewSessionID()

# Session Keys

Session keys use HMAC-SHA256 to create deterministic, verifiable keys:

	key := auth.GenerateSessionKey(sessionID, salt)
	err := auth.ValidateSessionKey(sessionID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's
deterministic, the same session ID and salt always produce the same
key, so keys are validated without being stored. Every request that
reads or changes a session sends it in the X-Session-Key header.

# ID Generation

Random hex IDs for draw records:

	id, err := auth.GenerateID(12)  // 24 hex characters

# IP Hashing

The creator's address is stored only as a salted hash:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
