package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

type draftGenerator interface {
	GenerateDraft(ctx context.Context, params models.GenerateDraftParams) (*models.GeneratedDraft, error)
}

// GenerateAPI handles assisted blog draft generation. This is the most
// expensive endpoint in the system, so it sits behind the aiGeneration rate
// class and requires an authenticated editor.
type GenerateAPI struct {
	generator      draftGenerator
	authMiddleware *auth.Middleware
	rateLimit      *RateLimitMiddleware
	logger         *logging.Logger
}

// NewGenerateAPI creates a new generation API handler.
func NewGenerateAPI(generator draftGenerator, authMiddleware *auth.Middleware, rateLimit *RateLimitMiddleware, logger *logging.Logger) *GenerateAPI {
	return &GenerateAPI{
		generator:      generator,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		logger:         logger,
	}
}

// RegisterRoutes registers generation routes on the given mux.
func (api *GenerateAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/admin/generate", corsMiddleware(api.authMiddleware.RequireAuth(
		api.rateLimit.Limit(ratelimit.ClassAIGeneration, api.handleGenerate))))
}

// handleGenerate handles POST /api/admin/generate
func (api *GenerateAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var params models.GenerateDraftParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	draft, err := api.generator.GenerateDraft(ctx, params)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		api.logger.Error("Failed to generate draft", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to generate draft")
		return
	}

	writeJSON(w, http.StatusOK, draft)
}
