// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-draw/auth"
	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/draw"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/models"
	"github.com/danielhkuo/quickly-draw/roster"
)

// SessionKeyHeader carries the key returned when a session is created
const SessionKeyHeader = "X-Session-Key"

type SessionHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	parser *roster.Parser
	locks  *db.SessionLocks
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, parser *roster.Parser, locks *db.SessionLocks) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, parser: parser, locks: locks}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	names, ok := confirmRoster(w, h.parser, req.RosterRequest)
	if !ok {
		return
	}

	h.createSession(w, r, names, req.RepeatMode)
}

// UploadRoster handles POST /sessions/upload with a multipart "file"
// field holding UTF-8 .csv or .txt content
func (h *SessionHandler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, middleware.MaxBodyBytes)
	if err := r.ParseMultipartForm(middleware.MaxBodyBytes); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".txt":
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "file must be .csv or .txt")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if !utf8.Valid(content) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file must be UTF-8 text")
		return
	}

	slog.Info("roster uploaded", "filename", header.Filename, "size", humanize.Bytes(uint64(len(content))))

	req := models.RosterRequest{
		Text:            string(content),
		AllowDuplicates: formBool(r, "allow_duplicates"),
	}
	names, ok := confirmRoster(w, h.parser, req)
	if !ok {
		return
	}

	h.createSession(w, r, names, formBool(r, "repeat_mode"))
}

func (h *SessionHandler) createSession(w http.ResponseWriter, r *http.Request, names []string, repeatMode bool) {
	sessionID, err := auth.NewSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionKeySalt)

	// Count and insert under one lock so parallel creates cannot pass the cap together
	unlock := h.locks.Lock("ip:" + ipHash)
	defer unlock()

	live, err := db.CountSessionsByIP(r.Context(), h.db, ipHash)
	if err != nil {
		slog.Error("failed to count sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if live >= h.cfg.MaxSessionsPerIP {
		slog.Warn("session limit reached", "ip_hash", ipHash, "live", live)
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many active sessions; delete one or wait for it to expire")
		return
	}

	st := draw.NewState(names, repeatMode)
	now := time.Now().UTC()

	err = db.InsertSession(r.Context(), h.db, models.Session{
		ID:         sessionID,
		Roster:     st.Roster,
		Pool:       st.Pool,
		RepeatMode: st.RepeatMode,
		IPHash:     &ipHash,
		CreatedAt:  now,
		LastSeenAt: now,
	})
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created",
		"session_id", sessionID,
		"ip_hash", ipHash,
		"names", len(names),
		"repeat_mode", repeatMode,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID:  sessionID,
		SessionKey: auth.GenerateSessionKey(sessionID, h.cfg.SessionKeySalt),
		Count:      len(names),
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	view := models.SessionView{
		Session:   s,
		Remaining: stateOf(s).Remaining(),
		CanDraw:   stateOf(s).CanDraw(),
		Age:       humanize.Time(s.CreatedAt),
	}

	run, err := db.GetGroupRun(r.Context(), h.db, s.ID)
	switch {
	case err == nil:
		view.Groups = &run
	case errors.Is(err, db.ErrNoGroups):
	default:
		slog.Error("failed to load groups", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// ReplaceRoster handles PUT /sessions/{id}/roster. The draw state
// starts over and any grouping is dropped.
func (h *SessionHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.RosterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	names, ok := confirmRoster(w, h.parser, req)
	if !ok {
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	st := draw.NewState(names, s.RepeatMode)
	if err := db.ReplaceRoster(r.Context(), h.db, sessionID, st.Roster, time.Now().UTC()); err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("failed to replace roster", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update roster")
		return
	}

	slog.Info("roster replaced", "session_id", sessionID, "names", len(names))

	middleware.JSONResponse(w, http.StatusOK, stateResponse(st))
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	err := db.DeleteSession(r.Context(), h.db, sessionID)
	if errors.Is(err, db.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	slog.Info("session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// authorize checks the session key against the {id} path value
func authorize(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return "", false
	}

	key := r.Header.Get(SessionKeyHeader)
	if err := auth.ValidateSessionKey(sessionID, key, cfg.SessionKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session key")
		return "", false
	}
	return sessionID, true
}

// loadSession authorizes the request, loads its session and marks it
// as seen so the sweeper leaves it alone. It writes the error response
// itself when it returns false.
func loadSession(w http.ResponseWriter, r *http.Request, conn *sql.DB, cfg cliparse.Config) (models.Session, bool) {
	sessionID, ok := authorize(w, r, cfg)
	if !ok {
		return models.Session{}, false
	}

	s, err := db.GetSession(r.Context(), conn, sessionID)
	if errors.Is(err, db.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return models.Session{}, false
	}
	if err != nil {
		slog.Error("failed to load session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Session{}, false
	}

	if err := db.TouchSession(r.Context(), conn, sessionID, time.Now().UTC()); err != nil {
		slog.Warn("failed to touch session", "session_id", sessionID, "error", err)
	}
	return s, true
}

// confirmRoster turns a roster request into the names a session will
// use. Duplicates are refused unless the caller allowed them.
func confirmRoster(w http.ResponseWriter, parser *roster.Parser, req models.RosterRequest) ([]string, bool) {
	var names []string
	if len(req.Names) > 0 {
		names = parser.Clean(req.Names)
	} else {
		names = parser.Parse(req.Text)
	}

	if err := roster.Validate(names); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	if !req.AllowDuplicates {
		if dups := roster.FindDuplicates(names); len(dups) > 0 {
			middleware.JSONResponse(w, http.StatusConflict, models.DuplicateNamesResponse{
				Error:      http.StatusText(http.StatusConflict),
				Message:    "roster contains duplicate names",
				Duplicates: dups,
			})
			return nil, false
		}
	}
	return names, true
}

func stateOf(s models.Session) draw.State {
	return draw.State{
		Roster:     s.Roster,
		Pool:       s.Pool,
		History:    s.History,
		RepeatMode: s.RepeatMode,
	}
}

func stateResponse(st draw.State) models.DrawStateResponse {
	history := st.History
	if history == nil {
		history = []string{}
	}
	return models.DrawStateResponse{
		Remaining:  st.Remaining(),
		History:    history,
		RepeatMode: st.RepeatMode,
		CanDraw:    st.CanDraw(),
	}
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.FormValue(key))
	return err == nil && v
}
