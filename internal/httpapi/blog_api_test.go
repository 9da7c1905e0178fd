package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

type mockPostStore struct {
	created    []models.CreatePostParams
	createPost *models.BlogPost
	createErr  error
	bySlug     *models.BlogPost
	bySlugErr  error
	listResp   *models.PostListResponse
	listParams []models.PostListParams
	deleteErr  error
}

func (m *mockPostStore) Create(ctx context.Context, authorID string, params models.CreatePostParams) (*models.BlogPost, error) {
	m.created = append(m.created, params)
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.createPost != nil {
		return m.createPost, nil
	}
	return &models.BlogPost{
		ID:       "post-1",
		Slug:     params.Slug,
		Title:    params.Title,
		Content:  params.Content,
		AuthorID: authorID,
		Status:   models.PostStatusDraft,
	}, nil
}

func (m *mockPostStore) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return nil, nil
}

func (m *mockPostStore) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return m.bySlug, m.bySlugErr
}

func (m *mockPostStore) List(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	m.listParams = append(m.listParams, params)
	if m.listResp != nil {
		return m.listResp, nil
	}
	return &models.PostListResponse{Posts: []models.BlogPost{}, PageSize: params.Limit, Page: 1}, nil
}

func (m *mockPostStore) Update(ctx context.Context, id string, params models.UpdatePostParams) (*models.BlogPost, error) {
	return nil, models.ErrNotFound
}

func (m *mockPostStore) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func newBlogAPI(t *testing.T, store *mockPostStore) (*BlogAPI, *auth.TokenManager) {
	t.Helper()
	logger := logging.NewWithOutput(logging.LevelError, io.Discard)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), logger)
	return NewBlogAPI(store, auth.NewMiddleware(tokens, logger), NewRateLimitMiddleware(limiter), logger), tokens
}

func TestCreatePost_GeneratesSlugFromTitle(t *testing.T) {
	store := &mockPostStore{}
	api, _ := newBlogAPI(t, store)

	body, _ := json.Marshal(models.CreatePostParams{
		Title:   "50 Cozy Gift Ideas for Winter Evenings",
		Content: "...",
	})
	rec := httptest.NewRecorder()
	api.handleCreatePost(rec, httptest.NewRequest(http.MethodPost, "/api/admin/posts", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if len(store.created) != 1 {
		t.Fatalf("len(created) = %d, want 1", len(store.created))
	}
	if got, want := store.created[0].Slug, "50-cozy-gift-ideas-for-winter-evenings"; got != want {
		t.Errorf("slug = %q, want %q", got, want)
	}
}

func TestCreatePost_RequiresTitle(t *testing.T) {
	api, _ := newBlogAPI(t, &mockPostStore{})

	body, _ := json.Marshal(models.CreatePostParams{Content: "..."})
	rec := httptest.NewRecorder()
	api.handleCreatePost(rec, httptest.NewRequest(http.MethodPost, "/api/admin/posts", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreatePost_DuplicateSlugConflicts(t *testing.T) {
	store := &mockPostStore{createErr: models.ErrDuplicate}
	api, _ := newBlogAPI(t, store)

	body, _ := json.Marshal(models.CreatePostParams{Title: "Title", Content: "..."})
	rec := httptest.NewRecorder()
	api.handleCreatePost(rec, httptest.NewRequest(http.MethodPost, "/api/admin/posts", bytes.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestGetPost_HidesDrafts(t *testing.T) {
	store := &mockPostStore{
		bySlug: &models.BlogPost{ID: "post-1", Slug: "secret-draft", Status: models.PostStatusDraft},
	}
	api, _ := newBlogAPI(t, store)

	rec := httptest.NewRecorder()
	api.handleGetPost(rec, httptest.NewRequest(http.MethodGet, "/api/blog/secret-draft", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d (drafts are not public)", rec.Code, http.StatusNotFound)
	}
}

func TestListPosts_PublicNeverIncludesDrafts(t *testing.T) {
	store := &mockPostStore{}
	api, _ := newBlogAPI(t, store)

	rec := httptest.NewRecorder()
	api.handleListPosts(rec, httptest.NewRequest(http.MethodGet, "/api/blog?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.listParams) != 1 {
		t.Fatalf("len(listParams) = %d, want 1", len(store.listParams))
	}
	if store.listParams[0].IncludeDrafts {
		t.Error("public listing requested drafts")
	}
	if store.listParams[0].Limit != 5 {
		t.Errorf("limit = %d, want 5", store.listParams[0].Limit)
	}
}

func TestAdminRoutes_RequireAuthentication(t *testing.T) {
	api, tokens := newBlogAPI(t, &mockPostStore{})
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, NewCORSMiddleware([]string{"*"}))

	body, _ := json.Marshal(models.CreatePostParams{Title: "Title", Content: "..."})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/posts", bytes.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	token, _, err := tokens.Issue("42")
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/admin/posts", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("authenticated status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
