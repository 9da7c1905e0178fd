package models

import "time"

type GiftCategory string

const (
	CategoryTech      GiftCategory = "tech"
	CategoryHome      GiftCategory = "home"
	CategoryOutdoors  GiftCategory = "outdoors"
	CategoryKids      GiftCategory = "kids"
	CategoryFood      GiftCategory = "food"
	CategoryWellness  GiftCategory = "wellness"
	CategoryHandmade  GiftCategory = "handmade"
	CategoryExperience GiftCategory = "experience"
)

// AllCategories lists every gift category in display order.
func AllCategories() []GiftCategory {
	return []GiftCategory{
		CategoryTech,
		CategoryHome,
		CategoryOutdoors,
		CategoryKids,
		CategoryFood,
		CategoryWellness,
		CategoryHandmade,
		CategoryExperience,
	}
}

// GiftItem is a curated catalog entry surfaced by the gift finder.
type GiftItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    GiftCategory `json:"category"`
	Occasions   []string     `json:"occasions"`
	Price       float64      `json:"price"`
	Currency    string       `json:"currency"`
	ProductURL  string       `json:"productUrl"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Description string       `json:"description,omitempty"`
	Popularity  int          `json:"popularity"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// GiftSearchParams filters a catalog search.
type GiftSearchParams struct {
	Query    string
	Category GiftCategory
	Occasion string
	MaxPrice float64
	Sort     string
	Limit    int
	Offset   int
}

// GiftSearchResponse is a page of catalog results.
type GiftSearchResponse struct {
	Items      []GiftItem `json:"items"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	Query      string     `json:"query,omitempty"`
}
