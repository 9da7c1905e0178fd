package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/smartgiftfinder/giftfinder/internal/models"
)

// PageFetcher scrapes product pages for title, description and image, so the
// draft pipeline can reference concrete gift ideas.
type PageFetcher struct {
	name   string
	urls   []string
	client *http.Client
}

// NewPageFetcher creates a fetcher that scrapes the given product page URLs.
func NewPageFetcher(name string, urls []string) *PageFetcher {
	return &PageFetcher{
		name: name,
		urls: urls,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (f *PageFetcher) Name() string {
	return f.name
}

func (f *PageFetcher) Fetch(ctx context.Context) ([]models.SourceItem, error) {
	var items []models.SourceItem
	for _, url := range f.urls {
		item, err := f.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (f *PageFetcher) fetchPage(ctx context.Context, url string) (*models.SourceItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "giftfinder-bot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	item, err := ParseProductPage(doc, url)
	if err != nil {
		return nil, err
	}
	item.Source = f.name
	return item, nil
}

// ParseProductPage extracts a SourceItem from a parsed product page,
// preferring Open Graph metadata and falling back to the document itself.
func ParseProductPage(doc *goquery.Document, url string) (*models.SourceItem, error) {
	title := metaContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return nil, fmt.Errorf("no title found at %s", url)
	}

	summary := metaContent(doc, "og:description")
	if summary == "" {
		summary, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
		summary = strings.TrimSpace(summary)
	}

	return &models.SourceItem{
		Title:    title,
		URL:      url,
		Summary:  summary,
		ImageURL: metaContent(doc, "og:image"),
	}, nil
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
