// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-draw/auth"
	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/models"
)

// TestSessionSalt is the session key salt used by GetTestConfig
const TestSessionSalt = "test-session-salt"

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The database disappears when the returned handle is closed.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := fmt.Sprintf("file:testutil-%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := db.Open(cliparse.DatabaseSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   cliparse.DatabaseSQLite,
		DatabaseURL:    cliparse.DefaultSQLiteURL,
		SessionKeySalt: TestSessionSalt,
		FallbackLabel:  "Group",
		LabelTimeout:   time.Second,
		SessionTTL:     time.Hour,

		MaxSessionsPerIP: 50,
	}
}

// CreateTestSession stores a fresh session and returns its ID and key
func CreateTestSession(t *testing.T, conn *sql.DB, cfg cliparse.Config, names []string, repeatMode bool) (sessionID, sessionKey string) {
	t.Helper()

	sessionID, err := auth.NewSessionID()
	if err != nil {
		t.Fatalf("Failed to generate session ID: %v", err)
	}
	sessionKey = auth.GenerateSessionKey(sessionID, cfg.SessionKeySalt)

	now := time.Now().UTC()
	err = db.InsertSession(context.Background(), conn, models.Session{
		ID:         sessionID,
		Roster:     names,
		Pool:       names,
		RepeatMode: repeatMode,
		CreatedAt:  now,
		LastSeenAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, sessionKey
}

// AddTestDraw records a draw of name, removing it from the pool
func AddTestDraw(t *testing.T, conn *sql.DB, sessionID, name string, pool []string) {
	t.Helper()

	recordID, _ := auth.GenerateID(12)
	_, err := db.SaveDraw(context.Background(), conn, pool, false, models.DrawRecord{
		ID:        recordID,
		SessionID: sessionID,
		Name:      name,
		DrawnAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test draw: %v", err)
	}
}

// SessionHeaders returns the headers that authorize requests on a session
func SessionHeaders(sessionKey string) map[string]string {
	return map[string]string{"X-Session-Key": sessionKey}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest creates a multipart request carrying content as the
// "file" field, plus any extra form fields
func MakeUploadRequest(path, filename string, content []byte, fields map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("file", filename)
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// ErrLabelsUnavailable is returned by FailingLabels
var ErrLabelsUnavailable = errors.New("label service unavailable")

// FixedLabels always returns the same labels, truncated to the count asked for
type FixedLabels []string

func (f FixedLabels) GenerateLabels(_ context.Context, count int, _ string) ([]string, error) {
	if count < len(f) {
		return append([]string(nil), f[:count]...), nil
	}
	return append([]string(nil), f...), nil
}

// FailingLabels never produces labels
type FailingLabels struct{}

func (FailingLabels) GenerateLabels(context.Context, int, string) ([]string, error) {
	return nil, ErrLabelsUnavailable
}
