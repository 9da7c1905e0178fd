package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/moderation"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

const maxUploadBytes = 5 << 20

type imageModerator interface {
	CheckImage(ctx context.Context, data []byte) (*moderation.Result, error)
}

// UploadAPI handles cover image uploads for blog posts. Every image is
// screened before it is accepted; a failed screen rejects the upload.
type UploadAPI struct {
	moderator      imageModerator
	authMiddleware *auth.Middleware
	rateLimit      *RateLimitMiddleware
	logger         *logging.Logger
}

// NewUploadAPI creates a new upload API handler.
func NewUploadAPI(moderator imageModerator, authMiddleware *auth.Middleware, rateLimit *RateLimitMiddleware, logger *logging.Logger) *UploadAPI {
	return &UploadAPI{
		moderator:      moderator,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		logger:         logger,
	}
}

// RegisterRoutes registers upload routes on the given mux.
func (api *UploadAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/admin/upload", corsMiddleware(api.authMiddleware.RequireAuth(
		api.rateLimit.Limit(ratelimit.ClassUpload, api.handleUpload))))
}

// handleUpload handles POST /api/admin/upload with a multipart "image" part.
func (api *UploadAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "image too large or malformed form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	result, err := api.moderator.CheckImage(ctx, data)
	if err != nil {
		// Unscreened images are never accepted.
		writeError(w, http.StatusServiceUnavailable, "image screening unavailable, try again")
		return
	}
	if !result.Approved {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "image rejected by moderation",
			"labels": result.Labels,
		})
		return
	}

	imageID := uuid.NewString()
	api.logger.Info("Image upload accepted", logging.WithFields(map[string]interface{}{
		"imageId": imageID,
		"bytes":   len(data),
	}))

	writeJSON(w, http.StatusCreated, map[string]string{
		"imageId": imageID,
		"url":     "/media/" + imageID,
	})
}
