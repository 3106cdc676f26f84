// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-draw/grouping"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/models"
	"github.com/danielhkuo/quickly-draw/roster"
)

// RosterHandler serves the stateless import screen: previews and dedup
// run before any session exists
type RosterHandler struct {
	parser *roster.Parser
}

func NewRosterHandler(parser *roster.Parser) *RosterHandler {
	return &RosterHandler{parser: parser}
}

// ParseRoster handles POST /rosters/parse
func (h *RosterHandler) ParseRoster(w http.ResponseWriter, r *http.Request) {
	var req models.RosterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var a roster.Analysis
	if len(req.Names) > 0 {
		names := h.parser.Clean(req.Names)
		a = roster.Analysis{Names: names, Duplicates: roster.FindDuplicates(names)}
	} else {
		a = h.parser.Analyze(req.Text)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ParseRosterResponse{
		Names:      a.Names,
		Count:      len(a.Names),
		Duplicates: a.Duplicates,
	})
}

// DedupeRoster handles POST /rosters/dedupe. The returned text is the
// unique names one per line, ready to replace the pasted input.
func (h *RosterHandler) DedupeRoster(w http.ResponseWriter, r *http.Request) {
	var req models.RosterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	names := h.namesOf(req)
	unique := roster.Deduplicate(names)
	middleware.JSONResponse(w, http.StatusOK, models.DedupeResponse{
		Names:   unique,
		Text:    strings.Join(unique, "\n"),
		Removed: len(names) - len(unique),
	})
}

// Themes handles GET /themes
func (h *RosterHandler) Themes(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ThemesResponse{
		Default: grouping.DefaultTheme,
		Themes:  grouping.Themes,
	})
}

func (h *RosterHandler) namesOf(req models.RosterRequest) []string {
	if len(req.Names) > 0 {
		return h.parser.Clean(req.Names)
	}
	return h.parser.Parse(req.Text)
}
