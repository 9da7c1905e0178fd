package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/smartgiftfinder/giftfinder/internal/models"
)

const maxFeedItems = 25

// FeedFetcher pulls gift-guide material from an RSS or Atom feed.
type FeedFetcher struct {
	name   string
	url    string
	parser *gofeed.Parser
}

// NewFeedFetcher creates a fetcher for one feed URL.
func NewFeedFetcher(name, url string) *FeedFetcher {
	return &FeedFetcher{
		name:   name,
		url:    url,
		parser: gofeed.NewParser(),
	}
}

func (f *FeedFetcher) Name() string {
	return f.name
}

func (f *FeedFetcher) Fetch(ctx context.Context) ([]models.SourceItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", f.url, err)
	}

	items := make([]models.SourceItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(items) >= maxFeedItems {
			break
		}
		if item == nil || strings.TrimSpace(item.Title) == "" || item.Link == "" {
			continue
		}

		source := models.SourceItem{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Summary: strings.TrimSpace(item.Description),
			Source:  f.name,
		}
		if item.PublishedParsed != nil {
			source.PublishedAt = *item.PublishedParsed
		}
		if item.Image != nil {
			source.ImageURL = item.Image.URL
		}
		items = append(items, source)
	}
	return items, nil
}
