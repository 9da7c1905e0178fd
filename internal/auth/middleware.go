package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
)

type contextKey string

const userIDKey contextKey = "userID"

// GetUserID returns the authenticated user id from the request context, or ""
// when the request is anonymous.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	tokens *TokenManager
	logger *logging.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(tokens *TokenManager, logger *logging.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// user id in the request context for downstream handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.authenticate(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// OptionalAuth attaches the user id to the context when a valid bearer token
// is present, and lets the request through anonymously otherwise. Used so the
// rate limiter can key on the authenticated principal when one exists.
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := m.authenticate(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next(w, r)
	}
}

func (m *Middleware) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" || tokenString == header {
		return "", false
	}

	userID, err := m.tokens.Verify(tokenString)
	if err != nil {
		if m.logger != nil {
			m.logger.Debug("Token verification failed", logging.WithField("error", err.Error()))
		}
		return "", false
	}
	return userID, true
}
