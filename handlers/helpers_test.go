// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/draw"
	"github.com/danielhkuo/quickly-draw/grouping"
	"github.com/danielhkuo/quickly-draw/labels"
	"github.com/danielhkuo/quickly-draw/roster"
	"github.com/danielhkuo/quickly-draw/testutil"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

// testHandlers builds every handler over one database with shared locks
type testHandlers struct {
	sessions *SessionHandler
	draws    *DrawHandler
	groups   *GroupHandler
}

func newTestHandlers(conn *sql.DB, cfg cliparse.Config, gen labels.Generator) testHandlers {
	locks := db.NewSessionLocks()
	if gen == nil {
		gen = labels.Static{Prefix: cfg.FallbackLabel}
	}
	return testHandlers{
		sessions: NewSessionHandler(conn, cfg, roster.NewParser(roster.DefaultKeywords), locks),
		draws:    NewDrawHandler(conn, cfg, locks, draw.NewReel(draw.NewEngine(nil), draw.DefaultReelTicks, nil)),
		groups:   NewGroupHandler(conn, cfg, locks, grouping.NewEngine(gen, labels.Static{Prefix: cfg.FallbackLabel}, nil)),
	}
}

// sessionRequest builds an authorized request against a session route
func sessionRequest(method, path, sessionID, sessionKey string, body interface{}) *http.Request {
	req := testutil.MakeRequest(method, path, body, testutil.SessionHeaders(sessionKey))
	req.SetPathValue("id", sessionID)
	return req
}
