package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/generator"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

type postStore interface {
	Create(ctx context.Context, authorID string, params models.CreatePostParams) (*models.BlogPost, error)
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	List(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error)
	Update(ctx context.Context, id string, params models.UpdatePostParams) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

// BlogAPI handles the public blog read surface and the admin write surface.
type BlogAPI struct {
	posts          postStore
	authMiddleware *auth.Middleware
	rateLimit      *RateLimitMiddleware
	logger         *logging.Logger
}

// NewBlogAPI creates a new blog API handler.
func NewBlogAPI(posts postStore, authMiddleware *auth.Middleware, rateLimit *RateLimitMiddleware, logger *logging.Logger) *BlogAPI {
	return &BlogAPI{
		posts:          posts,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		logger:         logger,
	}
}

// RegisterRoutes registers blog routes on the given mux.
func (api *BlogAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	if api.authMiddleware == nil {
		api.logger.Error("Blog API routes not registered: authMiddleware is nil")
		return
	}

	// Public reads. OptionalAuth lets the limiter key on the user when a
	// token is present instead of the client IP.
	mux.HandleFunc("/api/blog", corsMiddleware(api.authMiddleware.OptionalAuth(
		api.rateLimit.Limit(ratelimit.ClassGeneral, api.handleListPosts))))
	mux.HandleFunc("/api/blog/", corsMiddleware(api.authMiddleware.OptionalAuth(
		api.rateLimit.Limit(ratelimit.ClassGeneral, api.handleGetPost))))

	// Admin writes.
	mux.HandleFunc("/api/admin/posts", corsMiddleware(api.authMiddleware.RequireAuth(
		api.rateLimit.Limit(ratelimit.ClassBlog, api.handleAdminPosts))))
	mux.HandleFunc("/api/admin/posts/", corsMiddleware(api.authMiddleware.RequireAuth(
		api.rateLimit.Limit(ratelimit.ClassBlog, api.handleAdminPostByID))))
}

// handleListPosts handles GET /api/blog
func (api *BlogAPI) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	params := models.PostListParams{
		Tag:    query.Get("tag"),
		Limit:  parseIntQuery(query.Get("limit"), 20),
		Offset: parseIntQuery(query.Get("offset"), 0),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := api.posts.List(ctx, params)
	if err != nil {
		api.logger.Error("Failed to list posts", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetPost handles GET /api/blog/{slug}
func (api *BlogAPI) handleGetPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/blog/"), "/")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "post slug required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	post, err := api.posts.GetBySlug(ctx, slug)
	if err != nil {
		api.logger.Error("Failed to get post", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil || post.Status != models.PostStatusPublished {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// handleAdminPosts handles GET/POST /api/admin/posts
func (api *BlogAPI) handleAdminPosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.handleAdminList(w, r)
	case http.MethodPost:
		api.handleCreatePost(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (api *BlogAPI) handleAdminList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := models.PostListParams{
		Tag:           query.Get("tag"),
		Status:        models.PostStatus(query.Get("status")),
		Limit:         parseIntQuery(query.Get("limit"), 20),
		Offset:        parseIntQuery(query.Get("offset"), 0),
		IncludeDrafts: true,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := api.posts.List(ctx, params)
	if err != nil {
		api.logger.Error("Failed to list posts for admin", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (api *BlogAPI) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var params models.CreatePostParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(params.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if params.Slug == "" {
		params.Slug = generator.Slugify(params.Title)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	post, err := api.posts.Create(ctx, auth.GetUserID(r.Context()), params)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			writeError(w, http.StatusConflict, "a post with this slug already exists")
			return
		}
		api.logger.Error("Failed to create post", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// handleAdminPostByID handles GET/PUT/DELETE /api/admin/posts/{id}
func (api *BlogAPI) handleAdminPostByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/posts/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "post ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		api.handleAdminGet(w, r, id)
	case http.MethodPut:
		api.handleUpdatePost(w, r, id)
	case http.MethodDelete:
		api.handleDeletePost(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (api *BlogAPI) handleAdminGet(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	post, err := api.posts.GetByID(ctx, id)
	if err != nil {
		api.logger.Error("Failed to get post", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (api *BlogAPI) handleUpdatePost(w http.ResponseWriter, r *http.Request, id string) {
	var params models.UpdatePostParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	post, err := api.posts.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		api.logger.Error("Failed to update post", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (api *BlogAPI) handleDeletePost(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := api.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		api.logger.Error("Failed to delete post", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
