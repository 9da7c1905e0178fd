package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

func testLimiter(t *testing.T, store ratelimit.CounterStore) *ratelimit.Limiter {
	t.Helper()
	logger := logging.NewWithOutput(logging.LevelError, io.Discard)
	policies := map[string]ratelimit.Policy{
		ratelimit.ClassGeneral: {MaxRequests: 2, Window: time.Minute, KeyPrefix: "ratelimit:general"},
	}
	return ratelimit.New(store, logger, ratelimit.WithPolicies(policies))
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLimit_AllowsUnderCeiling(t *testing.T) {
	middleware := NewRateLimitMiddleware(testLimiter(t, ratelimit.NewMemoryStore()))
	handler := middleware.Limit(ratelimit.ClassGeneral, okHandler)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/blog", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "1")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing")
	}
}

func TestLimit_RejectsOverCeiling(t *testing.T) {
	middleware := NewRateLimitMiddleware(testLimiter(t, ratelimit.NewMemoryStore()))
	handler := middleware.Limit(ratelimit.ClassGeneral, okHandler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/blog", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/blog", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "0")
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on rejection")
	}
	if reset := rec.Header().Get("X-RateLimit-Reset"); reset != "" {
		if _, err := time.Parse(time.RFC3339, reset); err != nil {
			t.Errorf("X-RateLimit-Reset %q is not RFC3339: %v", reset, err)
		}
	} else {
		t.Error("X-RateLimit-Reset header missing on rejection")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("rejection body is not JSON: %v", err)
	}
	if body["error"] != "rate limit exceeded" {
		t.Errorf("body error = %v, want %q", body["error"], "rate limit exceeded")
	}
}

func TestLimit_FailsOpenWithoutStore(t *testing.T) {
	middleware := NewRateLimitMiddleware(testLimiter(t, nil))
	handler := middleware.Limit(ratelimit.ClassGeneral, okHandler)

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/blog", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d, want %d (no store must fail open)", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestLimit_KeysOnAuthenticatedUser(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	middleware := NewRateLimitMiddleware(testLimiter(t, store))
	logger := logging.NewWithOutput(logging.LevelError, io.Discard)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authMiddleware := auth.NewMiddleware(tokens, logger)
	handler := authMiddleware.OptionalAuth(middleware.Limit(ratelimit.ClassGeneral, okHandler))

	token, _, err := tokens.Issue("42")
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler(httptest.NewRecorder(), r)

	if got := store.Count("ratelimit:general:user:42"); got != 1 {
		t.Errorf("count under user key = %d, want 1", got)
	}
	if got := store.Count("ratelimit:general:ip:203.0.113.9"); got != 0 {
		t.Errorf("count under IP key = %d, want 0 (user identity must win)", got)
	}
}
