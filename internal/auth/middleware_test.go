package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
)

func newTestMiddleware(t *testing.T) (*Middleware, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewMiddleware(tokens, logging.NewWithOutput(logging.LevelError, io.Discard)), tokens
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	middleware, _ := newTestMiddleware(t)

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler called without authentication")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_AttachesUserID(t *testing.T) {
	middleware, tokens := newTestMiddleware(t)
	token, _, err := tokens.Issue("42")
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	var gotUserID string
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != "42" {
		t.Errorf("GetUserID = %q, want %q", gotUserID, "42")
	}
}

func TestRequireAuth_RejectsMalformedHeader(t *testing.T) {
	middleware, tokens := newTestMiddleware(t)
	token, _, err := tokens.Issue("42")
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	for _, header := range []string{token, "Basic " + token, "Bearer ", "Bearer invalid"} {
		handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("handler called with header %q", header)
		})
		r := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		r.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler(rec, r)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestOptionalAuth_PassesThroughAnonymously(t *testing.T) {
	middleware, _ := newTestMiddleware(t)

	called := false
	handler := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if id := GetUserID(r.Context()); id != "" {
			t.Errorf("GetUserID = %q, want empty for anonymous request", id)
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/blog", nil))

	if !called {
		t.Error("handler not called for anonymous request")
	}
}

func TestOptionalAuth_AttachesUserIDWhenPresent(t *testing.T) {
	middleware, tokens := newTestMiddleware(t)
	token, _, err := tokens.Issue("7")
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	var gotUserID string
	handler := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler(httptest.NewRecorder(), r)

	if gotUserID != "7" {
		t.Errorf("GetUserID = %q, want %q", gotUserID, "7")
	}
}
