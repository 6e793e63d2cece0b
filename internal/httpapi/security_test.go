package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	for header, want := range map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Referrer-Policy":             "strict-origin-when-cross-origin",
		"Access-Control-Allow-Origin": "http://127.0.0.1:3000",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s: expected %q, got %q", header, want, got)
		}
	}
}

func TestPreflightRequestShortCircuits(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/sell", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Fatalf("expected allowed methods header, got %q", got)
	}
}

func TestLoginRateLimit(t *testing.T) {
	handler := newTestHandler()

	payload := map[string]string{"email": "budi@toko.id", "password": "salah"}
	for i := 0; i < 5; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/login", "", payload)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodPost, "/login", "", payload)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt: expected 429, got %d", rec.Code)
	}
}

func TestSignupRateLimitIsPerClient(t *testing.T) {
	handler := newTestHandler()

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/signup",
			strings.NewReader(`{"email":"x@toko.id","password":"12345"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 5; i++ {
		if code := send("203.0.113.9:4000"); code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i+1, code)
		}
	}
	if code := send("203.0.113.9:5000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 regardless of source port, got %d", code)
	}
	// A different client address keeps its own budget.
	if code := send("203.0.113.77:4000"); code != http.StatusBadRequest {
		t.Fatalf("other client: expected 400, got %d", code)
	}
}

func TestOversizedJSONBodyRejected(t *testing.T) {
	handler := newTestHandler()

	big := bytes.Repeat([]byte("a"), (1<<20)+512)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", rec.Code)
	}
}
