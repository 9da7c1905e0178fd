package sources

import (
	"context"

	"github.com/smartgiftfinder/giftfinder/internal/models"
)

// Fetcher gathers gift-guide source material from one upstream.
type Fetcher interface {
	// Fetch returns items relevant to the draft pipeline.
	Fetch(ctx context.Context) ([]models.SourceItem, error)
	// Name identifies the upstream in logs and draft attributions.
	Name() string
}

// FetchResult pairs a fetcher's output with its origin for fan-in collection.
type FetchResult struct {
	Items  []models.SourceItem
	Source string
	Error  error
}
