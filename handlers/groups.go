// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/export"
	"github.com/danielhkuo/quickly-draw/grouping"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/models"
)

type GroupHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	locks  *db.SessionLocks
	engine *grouping.Engine
}

func NewGroupHandler(db *sql.DB, cfg cliparse.Config, locks *db.SessionLocks, engine *grouping.Engine) *GroupHandler {
	return &GroupHandler{db: db, cfg: cfg, locks: locks, engine: engine}
}

// MaxGroupSize is the largest group size allowed for a roster
func MaxGroupSize(rosterLen int) int {
	return max(grouping.MinGroupSize, rosterLen)
}

// CreateGroups handles POST /sessions/{id}/groups. Each run replaces
// the previous grouping.
func (h *GroupHandler) CreateGroups(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authorize(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.GroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = grouping.DefaultTheme
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	if req.GroupSize < grouping.MinGroupSize || req.GroupSize > MaxGroupSize(len(s.Roster)) {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("group_size must be between %d and %d", grouping.MinGroupSize, MaxGroupSize(len(s.Roster))))
		return
	}

	groups, err := h.engine.Group(r.Context(), s.Roster, req.GroupSize, theme)
	if errors.Is(err, grouping.ErrEmptyRoster) || errors.Is(err, grouping.ErrInvalidGroupSize) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("grouping failed", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Grouping failed")
		return
	}

	run := models.GroupRun{
		SessionID:  sessionID,
		GroupSize:  req.GroupSize,
		Theme:      theme,
		ComputedAt: time.Now().UTC(),
		Groups:     groups,
	}
	if err := db.SaveGroupRun(r.Context(), h.db, run); err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("failed to save groups", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save groups")
		return
	}

	slog.Info("groups created",
		"session_id", sessionID,
		"groups", len(groups),
		"group_size", req.GroupSize,
		"theme", theme,
	)

	middleware.JSONResponse(w, http.StatusCreated, run)
}

// GetGroups handles GET /sessions/{id}/groups
func (h *GroupHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadGroups(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, run)
}

// ExportGroups handles GET /sessions/{id}/groups.csv
func (h *GroupHandler) ExportGroups(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadGroups(w, r)
	if !ok {
		return
	}

	name := export.GroupsFilename(time.Now())
	middleware.CSVResponse(w, export.ContentDisposition(name), func(out io.Writer) error {
		return export.WriteGroups(out, run.Groups)
	})
}

func (h *GroupHandler) loadGroups(w http.ResponseWriter, r *http.Request) (models.GroupRun, bool) {
	s, ok := loadSession(w, r, h.db, h.cfg)
	if !ok {
		return models.GroupRun{}, false
	}

	run, err := db.GetGroupRun(r.Context(), h.db, s.ID)
	if errors.Is(err, db.ErrNoGroups) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No groups yet")
		return models.GroupRun{}, false
	}
	if err != nil {
		slog.Error("failed to load groups", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.GroupRun{}, false
	}
	return run, true
}
