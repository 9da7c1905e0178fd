package generator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/sources"
	"github.com/smartgiftfinder/giftfinder/internal/tagging"
)

type stubFetcher struct {
	name  string
	items []models.SourceItem
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context) ([]models.SourceItem, error) {
	s.calls++
	return s.items, s.err
}

func (s *stubFetcher) Name() string { return s.name }

func newTestService(fetchers ...sources.Fetcher) *Service {
	logger := logging.NewWithOutput(logging.LevelError, io.Discard)
	return NewService(fetchers, tagging.New(), logger)
}

func TestGenerateDraft_RequiresTopic(t *testing.T) {
	service := newTestService()

	_, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{Topic: "   "})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *models.ValidationError", err)
	}
	if validationErr.Field != "topic" {
		t.Errorf("Field = %q, want %q", validationErr.Field, "topic")
	}
}

func TestGenerateDraft_SelectsRelevantItems(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &stubFetcher{name: "test-feed", items: []models.SourceItem{
		{Title: "Best hiking boots of the year", URL: "https://example.com/a", PublishedAt: now.Add(-time.Hour)},
		{Title: "Top kitchen gadgets reviewed", URL: "https://example.com/b", PublishedAt: now},
		{Title: "Hiking backpacks under $100", URL: "https://example.com/c", PublishedAt: now.Add(-2 * time.Hour)},
	}}
	service := newTestService(fetcher)

	draft, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{Topic: "hiking"})
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}

	if len(draft.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(draft.Sources))
	}
	// Newest first.
	if draft.Sources[0].URL != "https://example.com/a" || draft.Sources[1].URL != "https://example.com/c" {
		t.Errorf("sources out of order: %q, %q", draft.Sources[0].URL, draft.Sources[1].URL)
	}
	if !strings.Contains(draft.Content, "Best hiking boots of the year") {
		t.Error("content missing selected item title")
	}
	if strings.Contains(draft.Content, "kitchen gadgets") {
		t.Error("content includes irrelevant item")
	}
}

func TestGenerateDraft_KeywordsWidenTheMatch(t *testing.T) {
	fetcher := &stubFetcher{name: "test-feed", items: []models.SourceItem{
		{Title: "Cast iron skillet buying guide", URL: "https://example.com/a"},
	}}
	service := newTestService(fetcher)

	draft, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{
		Topic:    "home cooks",
		Keywords: []string{"skillet"},
	})
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}
	if len(draft.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(draft.Sources))
	}
}

func TestGenerateDraft_CapsItems(t *testing.T) {
	var items []models.SourceItem
	for i := 0; i < 30; i++ {
		items = append(items, models.SourceItem{
			Title: "Camping lantern pick",
			URL:   "https://example.com/item",
		})
	}
	service := newTestService(&stubFetcher{name: "test-feed", items: items})

	draft, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{
		Topic:    "camping",
		MaxItems: 3,
	})
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}
	if len(draft.Sources) != 3 {
		t.Errorf("len(Sources) = %d, want 3", len(draft.Sources))
	}
}

func TestGenerateDraft_SkipsFailingSource(t *testing.T) {
	good := &stubFetcher{name: "good", items: []models.SourceItem{
		{Title: "Tea sampler sets for tea lovers", URL: "https://example.com/a"},
	}}
	bad := &stubFetcher{name: "bad", err: errors.New("connection refused")}
	service := newTestService(good, bad)

	draft, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{Topic: "tea"})
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}
	if len(draft.Sources) != 1 {
		t.Errorf("len(Sources) = %d, want 1", len(draft.Sources))
	}
}

func TestGenerateDraft_TitleAndTags(t *testing.T) {
	service := newTestService()

	draft, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{
		Topic:    "new parents",
		Occasion: "baby shower",
	})
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}

	if draft.Title != "Baby Shower Gift Ideas: new parents" {
		t.Errorf("Title = %q", draft.Title)
	}
	if draft.Slug != "baby-shower-gift-ideas-new-parents" {
		t.Errorf("Slug = %q", draft.Slug)
	}

	found := false
	for _, tag := range draft.Tags {
		if tag == "baby shower" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags = %v, want occasion tag included", draft.Tags)
	}
}

func TestGenerateDraft_CachesByTopicAndOccasion(t *testing.T) {
	fetcher := &stubFetcher{name: "test-feed", items: []models.SourceItem{
		{Title: "Gardening tool roundup", URL: "https://example.com/a"},
	}}
	service := newTestService(fetcher)

	params := models.GenerateDraftParams{Topic: "gardening"}
	first, err := service.GenerateDraft(context.Background(), params)
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}
	second, err := service.GenerateDraft(context.Background(), params)
	if err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}

	if first != second {
		t.Error("repeated request did not reuse the cached draft")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher.calls = %d, want 1", fetcher.calls)
	}

	// A different occasion is a different draft.
	if _, err := service.GenerateDraft(context.Background(), models.GenerateDraftParams{
		Topic:    "gardening",
		Occasion: "retirement",
	}); err != nil {
		t.Fatalf("GenerateDraft error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher.calls = %d, want 2", fetcher.calls)
	}
}
