package respond

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, 404, "NOT_FOUND", "Benutzer nicht gefunden")

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "NOT_FOUND" || resp.Error.Message != "Benutzer nicht gefunden" {
		t.Errorf("envelope = %+v", resp.Error)
	}
}

func TestCachedHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Cached(rec, []byte(`[{"total":42}]`), `W/"abc"`, time.Hour, false)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("ETag"); got != `W/"abc"` {
		t.Errorf("ETag = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600, stale-while-revalidate=1800" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q", got)
	}

	rec = httptest.NewRecorder()
	Cached(rec, nil, `W/"abc"`, time.Hour, true)
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache on hit = %q", got)
	}
}

func TestNotModified(t *testing.T) {
	rec := httptest.NewRecorder()
	NotModified(rec, `W/"abc"`)

	if rec.Code != 304 {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body: %q", rec.Body.String())
	}
}
