// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package labels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fakeGemini(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "", ""); err == nil {
		t.Error("expected error without API key")
	}
}

func TestGemini_GenerateLabels(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"text": "[\"星火队\", \"破晓队\", \"远航队\"]"}]}
		}]
	}`)

	g, err := NewGemini(context.Background(), "test-key", "", srv.URL)
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	if g.Name() != "gemini:"+DefaultGeminiModel {
		t.Errorf("unexpected name %q", g.Name())
	}

	got, err := g.GenerateLabels(context.Background(), 2, "宇宙与星际探险")
	if err != nil {
		t.Fatalf("GenerateLabels() error = %v", err)
	}
	if diff := cmp.Diff([]string{"星火队", "破晓队"}, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestGemini_ServerError(t *testing.T) {
	srv := fakeGemini(t, http.StatusInternalServerError, `{"error": {"code": 500, "message": "boom", "status": "INTERNAL"}}`)

	g, err := NewGemini(context.Background(), "test-key", "test-model", srv.URL)
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}

	if _, err := g.GenerateLabels(context.Background(), 2, "theme"); err == nil {
		t.Error("expected error from failing server")
	}
}

func TestGemini_ZeroCount(t *testing.T) {
	g, err := NewGemini(context.Background(), "test-key", "", "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	got, err := g.GenerateLabels(context.Background(), 0, "theme")
	if err != nil || len(got) != 0 {
		t.Errorf("expected no labels and no error, got %v, %v", got, err)
	}
}
