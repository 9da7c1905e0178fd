package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/gifts"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

// GiftsAPI serves the public gift finder.
type GiftsAPI struct {
	giftsSvc       *gifts.Service
	authMiddleware *auth.Middleware
	rateLimit      *RateLimitMiddleware
	logger         *logging.Logger
}

// NewGiftsAPI creates a new gifts API handler.
func NewGiftsAPI(giftsSvc *gifts.Service, authMiddleware *auth.Middleware, rateLimit *RateLimitMiddleware, logger *logging.Logger) *GiftsAPI {
	return &GiftsAPI{
		giftsSvc:       giftsSvc,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		logger:         logger,
	}
}

// RegisterRoutes registers gift finder routes on the given mux.
func (api *GiftsAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/gifts", corsMiddleware(api.authMiddleware.OptionalAuth(
		api.rateLimit.Limit(ratelimit.ClassGeneral, api.handleSearch))))
	mux.HandleFunc("/api/gifts/", corsMiddleware(api.authMiddleware.OptionalAuth(
		api.rateLimit.Limit(ratelimit.ClassGeneral, api.handleGet))))
}

// handleSearch handles GET /api/gifts
func (api *GiftsAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	params := models.GiftSearchParams{
		Query:    query.Get("query"),
		Category: models.GiftCategory(query.Get("category")),
		Occasion: query.Get("occasion"),
		MaxPrice: parseFloatQuery(query.Get("maxPrice"), 0),
		Sort:     query.Get("sort"),
		Limit:    parseIntQuery(query.Get("limit"), 20),
		Offset:   parseIntQuery(query.Get("offset"), 0),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	response, err := api.giftsSvc.Search(ctx, params)
	if err != nil {
		api.logger.Error("Failed to search gifts", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to search gifts")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGet handles GET /api/gifts/{id}
func (api *GiftsAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/gifts/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "gift ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	item, err := api.giftsSvc.Get(ctx, id)
	if err != nil {
		var svcErr *gifts.ServiceError
		if errors.As(err, &svcErr) && svcErr.Message == "gift not found" {
			writeError(w, http.StatusNotFound, "gift not found")
			return
		}
		api.logger.Error("Failed to get gift", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to get gift")
		return
	}

	writeJSON(w, http.StatusOK, item)
}
