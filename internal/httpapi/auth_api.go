package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

type userStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id string) error
}

// AuthAPI handles login and session introspection.
type AuthAPI struct {
	users          userStore
	tokens         *auth.TokenManager
	authMiddleware *auth.Middleware
	rateLimit      *RateLimitMiddleware
	logger         *logging.Logger
}

// NewAuthAPI creates a new auth API handler.
func NewAuthAPI(users userStore, tokens *auth.TokenManager, authMiddleware *auth.Middleware, rateLimit *RateLimitMiddleware, logger *logging.Logger) *AuthAPI {
	return &AuthAPI{
		users:          users,
		tokens:         tokens,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		logger:         logger,
	}
}

// RegisterRoutes registers auth routes on the given mux.
func (api *AuthAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	// Login is limited by IP: there is no authenticated identity yet, and
	// the auth class is the tightest policy in the table.
	mux.HandleFunc("/api/auth/login", corsMiddleware(
		api.rateLimit.Limit(ratelimit.ClassAuth, api.handleLogin)))
	mux.HandleFunc("/api/auth/me", corsMiddleware(api.authMiddleware.RequireAuth(
		api.rateLimit.Limit(ratelimit.ClassGeneral, api.handleMe))))
}

// handleLogin handles POST /api/auth/login
func (api *AuthAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var params models.LoginParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(params.Email) == "" || params.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := api.users.GetByEmail(ctx, params.Email)
	if err != nil {
		api.logger.Error("Failed to look up user for login", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || user.Status != models.UserStatusActive || !auth.CheckPassword(user.PasswordHash, params.Password) {
		// Same response for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := api.tokens.Issue(user.ID)
	if err != nil {
		api.logger.Error("Failed to issue token", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := api.users.TouchLogin(ctx, user.ID); err != nil {
		api.logger.Warn("Failed to record login time", logging.WithField("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	})
}

// handleMe handles GET /api/auth/me
func (api *AuthAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := api.users.GetByID(ctx, auth.GetUserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
