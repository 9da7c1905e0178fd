package models

import "time"

// GenerateDraftParams is the request body for the assisted draft endpoint.
type GenerateDraftParams struct {
	Topic    string   `json:"topic"`
	Occasion string   `json:"occasion"`
	Keywords []string `json:"keywords"`
	MaxItems int      `json:"maxItems"`
}

// SourceItem is one piece of gathered source material for a draft: a feed
// entry or a scraped product page.
type SourceItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
}

// GeneratedDraft is the assembled, unsaved blog draft returned to the editor.
type GeneratedDraft struct {
	Slug      string       `json:"slug"`
	Title     string       `json:"title"`
	Excerpt   string       `json:"excerpt"`
	Content   string       `json:"content"`
	Tags      []string     `json:"tags"`
	Sources   []SourceItem `json:"sources"`
	CreatedAt time.Time    `json:"createdAt"`
}
