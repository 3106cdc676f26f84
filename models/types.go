package models

import "time"

// Request types

// RosterRequest carries a roster either as raw pasted text or as an
// already-split list of names. Names wins when both are set.
type RosterRequest struct {
	Text            string   `json:"text"`
	Names           []string `json:"names,omitempty"`
	AllowDuplicates bool     `json:"allow_duplicates"`
}

type CreateSessionRequest struct {
	RosterRequest
	RepeatMode bool `json:"repeat_mode"`
}

type SetModeRequest struct {
	RepeatMode bool `json:"repeat_mode"`
}

type GroupRequest struct {
	GroupSize int    `json:"group_size"`
	Theme     string `json:"theme"`
}

// Response types

type ParseRosterResponse struct {
	Names      []string `json:"names"`
	Count      int      `json:"count"`
	Duplicates []string `json:"duplicates"`
}

type DedupeResponse struct {
	Names   []string `json:"names"`
	Text    string   `json:"text"`
	Removed int      `json:"removed"`
}

type CreateSessionResponse struct {
	SessionID  string `json:"session_id"`
	SessionKey string `json:"session_key"`
	Count      int    `json:"count"`
}

// DuplicateNamesResponse is returned with 409 when a roster has
// duplicates and the caller has not confirmed them
type DuplicateNamesResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Duplicates []string `json:"duplicates"`
}

type DrawResponse struct {
	Winner     string   `json:"winner"`
	Reel       []string `json:"reel"`
	Remaining  int      `json:"remaining"`
	History    []string `json:"history"`
	RepeatMode bool     `json:"repeat_mode"`
}

type DrawStateResponse struct {
	Remaining  int      `json:"remaining"`
	History    []string `json:"history"`
	RepeatMode bool     `json:"repeat_mode"`
	CanDraw    bool     `json:"can_draw"`
}

type ThemesResponse struct {
	Default string   `json:"default"`
	Themes  []string `json:"themes"`
}

// Domain types

type Session struct {
	ID         string    `json:"id"`
	Roster     []string  `json:"roster"`
	Pool       []string  `json:"-"`
	History    []string  `json:"history"`
	RepeatMode bool      `json:"repeat_mode"`
	IPHash     *string   `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// SessionView is the GET /sessions/{id} payload
type SessionView struct {
	Session
	Remaining int       `json:"remaining"`
	CanDraw   bool      `json:"can_draw"`
	Age       string    `json:"age"`
	Groups    *GroupRun `json:"groups,omitempty"`
}

type DrawRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Name      string    `json:"name"`
	DrawnAt   time.Time `json:"drawn_at"`
}

type GroupResult struct {
	GroupName string   `json:"group_name"`
	Members   []string `json:"members"`
}

// GroupRun is the latest grouping of a session; each run replaces the last
type GroupRun struct {
	SessionID  string        `json:"session_id"`
	GroupSize  int           `json:"group_size"`
	Theme      string        `json:"theme"`
	ComputedAt time.Time     `json:"computed_at"`
	Groups     []GroupResult `json:"groups"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
