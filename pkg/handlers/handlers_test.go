package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/ocrdesk/ocrdesk/pkg/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.RespondJSON(rec, 201, map[string]string{"status": "created"})

	if rec.Code != 201 {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "created" {
		t.Errorf("body = %v", body)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.RespondError(rec, testLogger(), 404, errors.New("file record not found"))

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "file record not found" {
		t.Errorf("error = %q, want %q", body["error"], "file record not found")
	}
}

func TestRespondBytes(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.RespondBytes(rec, "application/pdf", []byte("%PDF-1.4"), true)

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", got)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRespondBytesMutable(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.RespondBytes(rec, "text/plain", []byte("hello"), false)

	if got := rec.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Cache-Control = %q, want unset", got)
	}
}
