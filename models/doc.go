// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RosterRequest: text or names, allow_duplicates
  - CreateSessionRequest: roster plus repeat_mode
  - SetModeRequest: repeat_mode
  - GroupRequest: group_size, theme

# Response Types

Types for JSON responses:

  - ParseRosterResponse: names, count, duplicates
  - DedupeResponse: names, text, removed
  - CreateSessionResponse: session_id, session_key, count
  - DuplicateNamesResponse: 409 payload listing duplicates
  - DrawResponse: winner, reel, remaining, history
  - DrawStateResponse: remaining, history, repeat_mode, can_draw
  - ThemesResponse: default, themes
  - ErrorResponse: error, message

# Domain Types

  - Session: roster, remaining pool, history (most recent first), mode
  - SessionView: session plus derived fields and the latest groups
  - DrawRecord: one settled draw
  - GroupResult: group name and members
  - GroupRun: the latest grouping for a session
*/
package models
