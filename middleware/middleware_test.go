// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-draw/models"
	"github.com/google/go-cmp/cmp"
)

// captureLogs routes slog output into a buffer for the duration of a test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// completedLog finds the "request completed" record in captured output
func completedLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Bad log line %q: %v", line, err)
		}
		if rec["msg"] == "request completed" {
			return rec
		}
	}
	t.Fatalf("No completion record in %q", buf.String())
	return nil
}

func TestWithLogging(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{
			name:   "draw succeeds without explicit header",
			method: "POST",
			path:   "/sessions/abc/draw",
			write:  func(w http.ResponseWriter) { w.Write([]byte(`{"winner":"王伟"}`)) },
			status: http.StatusOK,
		},
		{
			name:   "session created",
			method: "POST",
			path:   "/sessions",
			write:  func(w http.ResponseWriter) { w.WriteHeader(http.StatusCreated) },
			status: http.StatusCreated,
		},
		{
			name:   "session deleted",
			method: "DELETE",
			path:   "/sessions/abc",
			write:  func(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) },
			status: http.StatusNoContent,
		},
		{
			name:   "pool exhausted",
			method: "POST",
			path:   "/sessions/abc/draw",
			write: func(w http.ResponseWriter) {
				ErrorResponse(w, http.StatusConflict, "All names have been drawn; reset to draw again")
			},
			status: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				tc.write(w)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tc.status {
				t.Errorf("Expected response status %d, got %d", tc.status, w.Code)
			}

			rec := completedLog(t, logs)
			if got, _ := rec["status"].(float64); int(got) != tc.status {
				t.Errorf("Expected logged status %d, got %v", tc.status, rec["status"])
			}
			if rec["method"] != tc.method || rec["path"] != tc.path {
				t.Errorf("Unexpected logged request %v %v", rec["method"], rec["path"])
			}
			if _, ok := rec["duration_ms"]; !ok {
				t.Error("Expected duration_ms in completion record")
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{
			name:   "new session",
			status: http.StatusCreated,
			data:   models.CreateSessionResponse{SessionID: "s1", SessionKey: "k1", Count: 2},
			want:   `{"session_id":"s1","session_key":"k1","count":2}`,
		},
		{
			name:   "duplicate names",
			status: http.StatusConflict,
			data: models.DuplicateNamesResponse{
				Error:      "Conflict",
				Message:    "Roster contains duplicate names",
				Duplicates: []string{"王伟"},
			},
			want: `{"error":"Conflict","message":"Roster contains duplicate names","duplicates":["王伟"]}`,
		},
		{
			name:   "draw result",
			status: http.StatusOK,
			data: models.DrawResponse{
				Winner:    "李芳",
				Reel:      []string{"王伟", "李芳"},
				Remaining: 1,
				History:   []string{"李芳"},
			},
			want: `{"winner":"李芳","reel":["王伟","李芳"],"remaining":1,"history":["李芳"],"repeat_mode":false}`,
		},
		{
			name:   "themes",
			status: http.StatusOK,
			data:   models.ThemesResponse{Default: "动物世界", Themes: []string{"动物世界", "美食与甜点"}},
			want:   `{"default":"动物世界","themes":["动物世界","美食与甜点"]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONResponse(w, tc.status, tc.data)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			if diff := cmp.Diff(tc.want, strings.TrimSpace(w.Body.String())); diff != "" {
				t.Errorf("Body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		status  int
		message string
		want    models.ErrorResponse
	}{
		{http.StatusBadRequest, "Roster has no names", models.ErrorResponse{Error: "Bad Request", Message: "Roster has no names"}},
		{http.StatusUnauthorized, "Invalid session key", models.ErrorResponse{Error: "Unauthorized", Message: "Invalid session key"}},
		{http.StatusNotFound, "No groups yet", models.ErrorResponse{Error: "Not Found", Message: "No groups yet"}},
		{http.StatusConflict, "All names have been drawn; reset to draw again", models.ErrorResponse{Error: "Conflict", Message: "All names have been drawn; reset to draw again"}},
		{http.StatusTooManyRequests, "Too many active sessions; delete one or wait for it to expire", models.ErrorResponse{Error: "Too Many Requests", Message: "Too many active sessions; delete one or wait for it to expire"}},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(w, tc.status, tc.message)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}

			var got models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Error body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("roster with names list", func(t *testing.T) {
		body := `{"names":["王伟","李芳"],"allow_duplicates":true,"repeat_mode":true}`
		req := httptest.NewRequest("POST", "/sessions", strings.NewReader(body))

		var got models.CreateSessionRequest
		if err := ParseJSONBody(req, &got); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		want := models.CreateSessionRequest{
			RosterRequest: models.RosterRequest{Names: []string{"王伟", "李芳"}, AllowDuplicates: true},
			RepeatMode:    true,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("group request ignores unknown fields", func(t *testing.T) {
		body := `{"group_size":4,"theme":"美食与甜点","seed":7}`
		req := httptest.NewRequest("POST", "/sessions/abc/groups", strings.NewReader(body))

		var got models.GroupRequest
		if err := ParseJSONBody(req, &got); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got.GroupSize != 4 || got.Theme != "美食与甜点" {
			t.Errorf("Unexpected request %+v", got)
		}
	})

	t.Run("mode toggle with wrong type", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/sessions/abc/mode", strings.NewReader(`{"repeat_mode":"yes"}`))

		var got models.SetModeRequest
		if err := ParseJSONBody(req, &got); err == nil {
			t.Error("Expected error for non-boolean repeat_mode")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/rosters/parse", strings.NewReader(""))

		var got models.RosterRequest
		if err := ParseJSONBody(req, &got); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("oversized roster", func(t *testing.T) {
		body := `{"text":"` + strings.Repeat("王", MaxBodyBytes/3+1) + `"}`
		req := httptest.NewRequest("POST", "/rosters/parse", strings.NewReader(body))

		var got models.RosterRequest
		if err := ParseJSONBody(req, &got); err == nil {
			t.Error("Expected error for body over MaxBodyBytes")
		}
	})
}

func TestCSVResponse(t *testing.T) {
	t.Run("history download", func(t *testing.T) {
		w := httptest.NewRecorder()
		disposition := `attachment; filename="draw-history.csv"`

		CSVResponse(w, disposition, func(out io.Writer) error {
			_, err := io.WriteString(out, "seq,name\n1,王伟\n")
			return err
		})

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
			t.Errorf("Unexpected Content-Type '%s'", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != disposition {
			t.Errorf("Unexpected Content-Disposition '%s'", cd)
		}
		if w.Body.String() != "seq,name\n1,王伟\n" {
			t.Errorf("Unexpected body '%s'", w.Body.String())
		}
	})

	t.Run("render failure sends no partial rows", func(t *testing.T) {
		w := httptest.NewRecorder()

		CSVResponse(w, "attachment", func(out io.Writer) error {
			io.WriteString(out, "group,member\n")
			return io.ErrShortWrite
		})

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "group,member") {
			t.Error("Partial CSV should not be sent")
		}
		if w.Header().Get("Content-Disposition") != "" {
			t.Error("Failed export should not look like a download")
		}
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="groups.csv"`)
		w.Write([]byte("group,member\n"))
	})
	handler := CORS(next)

	t.Run("preflight for keyed draw", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/sessions/abc/draw", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type, x-session-key")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Preflight should not reach the handler, got '%s'", w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected origin to be echoed, got '%s'", got)
		}

		allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
		for _, h := range strings.Split(req.Header.Get("Access-Control-Request-Headers"), ",") {
			if !strings.Contains(allowed, strings.TrimSpace(h)) {
				t.Errorf("Requested header %q not allowed in %q", h, allowed)
			}
		}
		methods := w.Header().Get("Access-Control-Allow-Methods")
		for _, m := range []string{"GET", "POST", "PUT", "DELETE"} {
			if !strings.Contains(methods, m) {
				t.Errorf("Expected %s in allowed methods %q", m, methods)
			}
		}
	})

	t.Run("export exposes filename", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/abc/groups/export", nil)
		req.Header.Set("Origin", "https://draw.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Body.String() != "group,member\n" {
			t.Error("Expected the export handler to run")
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
			t.Errorf("Expected Content-Disposition exposed, got '%s'", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials allowed, got '%s'", got)
		}
	})

	t.Run("no origin falls back to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/themes", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected '*', got '%s'", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"proxy chain keeps first hop", "203.0.113.7, 10.0.0.2", "", "10.0.0.1:4000", "203.0.113.7"},
		{"forwarded beats real ip", "198.51.100.4", "203.0.113.50", "10.0.0.1:4000", "198.51.100.4"},
		{"real ip behind nginx", "", "203.0.113.50", "10.0.0.1:4000", "203.0.113.50"},
		{"direct client", "", "", "192.0.2.10:51234", "192.0.2.10"},
		{"address without port", "", "", "192.0.2.10", "192.0.2.10"},
		{"ipv6 loopback", "", "", "[::1]:8080", "[::1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/sessions", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if got := GetClientIP(req); got != tc.want {
				t.Errorf("Expected IP '%s', got '%s'", tc.want, got)
			}
		})
	}
}
