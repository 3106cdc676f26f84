// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-draw/auth"
	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/draw"
	"github.com/danielhkuo/quickly-draw/export"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/models"
)

type DrawHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	locks *db.SessionLocks
	reel  *draw.Reel
}

func NewDrawHandler(db *sql.DB, cfg cliparse.Config, locks *db.SessionLocks, reel *draw.Reel) *DrawHandler {
	return &DrawHandler{db: db, cfg: cfg, locks: locks, reel: reel}
}

// Draw handles POST /sessions/{id}/draw
func (h *DrawHandler) Draw(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	spin, next, err := h.reel.Draw(stateOf(s))
	if errors.Is(err, draw.ErrExhaustedPool) {
		middleware.ErrorResponse(w, http.StatusConflict, "All names have been drawn; reset to draw again")
		return
	}
	if errors.Is(err, draw.ErrEmptyRoster) {
		middleware.ErrorResponse(w, http.StatusConflict, "Roster is empty")
		return
	}
	if err != nil {
		slog.Error("draw failed", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Draw failed")
		return
	}

	recordID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate draw ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Draw failed")
		return
	}

	rec, err := db.SaveDraw(r.Context(), h.db, next.Pool, next.RepeatMode, models.DrawRecord{
		ID:        recordID,
		SessionID: sessionID,
		Name:      spin.Result.Winner,
		DrawnAt:   time.Now().UTC(),
	})
	if errors.Is(err, db.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to save draw", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save draw")
		return
	}

	slog.Info("name drawn",
		"session_id", sessionID,
		"seq", rec.Seq,
		"remaining", next.Remaining(),
		"repeat_mode", next.RepeatMode,
	)

	middleware.JSONResponse(w, http.StatusOK, models.DrawResponse{
		Winner:     spin.Result.Winner,
		Reel:       spin.Frames,
		Remaining:  next.Remaining(),
		History:    next.History,
		RepeatMode: next.RepeatMode,
	})
}

// SetMode handles POST /sessions/{id}/mode
func (h *DrawHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.SetModeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	st := draw.SetRepeatMode(stateOf(s), req.RepeatMode)
	if err := db.SetRepeatMode(r.Context(), h.db, sessionID, st.RepeatMode, time.Now().UTC()); err != nil {
		slog.Error("failed to set repeat mode", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to set mode")
		return
	}

	slog.Info("draw mode changed", "session_id", sessionID, "repeat_mode", st.RepeatMode)

	middleware.JSONResponse(w, http.StatusOK, stateResponse(st))
}

// Reset handles POST /sessions/{id}/reset
func (h *DrawHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	st := draw.Reset(stateOf(s))
	if err := db.ResetDraws(r.Context(), h.db, sessionID, st.Pool, time.Now().UTC()); err != nil {
		slog.Error("failed to reset draws", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset")
		return
	}

	slog.Info("draws reset", "session_id", sessionID, "pool", st.Remaining())

	middleware.JSONResponse(w, http.StatusOK, stateResponse(st))
}

// ExportHistory handles GET /sessions/{id}/history.csv
func (h *DrawHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	if len(s.History) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nothing to export")
		return
	}

	name := export.HistoryFilename(time.Now())
	middleware.CSVResponse(w, export.ContentDisposition(name), func(out io.Writer) error {
		return export.WriteHistory(out, s.History)
	})
}
