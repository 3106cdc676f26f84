// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/draw"
	"github.com/danielhkuo/quickly-draw/grouping"
	"github.com/danielhkuo/quickly-draw/handlers"
	"github.com/danielhkuo/quickly-draw/labels"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/roster"
)

// NewRouter wires every endpoint. A nil parser uses the default header
// keywords; a nil generator names groups with the fallback prefix.
func NewRouter(conn *sql.DB, cfg cliparse.Config, parser *roster.Parser, gen labels.Generator) *http.ServeMux {
	mux := http.NewServeMux()

	if parser == nil {
		parser = roster.NewParser(roster.DefaultKeywords)
	}
	fallback := labels.Static{Prefix: cfg.FallbackLabel}
	if gen == nil {
		gen = fallback
	}

	// Shared engines and locks
	locks := db.NewSessionLocks()
	reel := draw.NewReel(draw.NewEngine(nil), draw.DefaultReelTicks, nil)
	groups := grouping.NewEngine(gen, fallback, nil)

	// Initialize handlers
	rosterHandler := handlers.NewRosterHandler(parser)
	sessionHandler := handlers.NewSessionHandler(conn, cfg, parser, locks)
	drawHandler := handlers.NewDrawHandler(conn, cfg, locks, reel)
	groupHandler := handlers.NewGroupHandler(conn, cfg, locks, groups)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Import screen (stateless)
	mux.HandleFunc("GET /themes", middleware.WithLogging(rosterHandler.Themes))
	mux.HandleFunc("POST /rosters/parse", middleware.WithLogging(rosterHandler.ParseRoster))
	mux.HandleFunc("POST /rosters/dedupe", middleware.WithLogging(rosterHandler.DedupeRoster))

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("POST /sessions/upload", middleware.WithLogging(sessionHandler.UploadRoster))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("PUT /sessions/{id}/roster", middleware.WithLogging(sessionHandler.ReplaceRoster))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(sessionHandler.DeleteSession))

	// Lucky draw (requires X-Session-Key)
	mux.HandleFunc("POST /sessions/{id}/draw", middleware.WithLogging(drawHandler.Draw))
	mux.HandleFunc("POST /sessions/{id}/mode", middleware.WithLogging(drawHandler.SetMode))
	mux.HandleFunc("POST /sessions/{id}/reset", middleware.WithLogging(drawHandler.Reset))
	mux.HandleFunc("GET /sessions/{id}/history.csv", middleware.WithLogging(drawHandler.ExportHistory))

	// Grouping (requires X-Session-Key)
	mux.HandleFunc("POST /sessions/{id}/groups", middleware.WithLogging(groupHandler.CreateGroups))
	mux.HandleFunc("GET /sessions/{id}/groups", middleware.WithLogging(groupHandler.GetGroups))
	mux.HandleFunc("GET /sessions/{id}/groups.csv", middleware.WithLogging(groupHandler.ExportGroups))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-draw API v1"))
	})

	return mux
}
