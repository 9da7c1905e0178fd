package models

import "time"

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// BlogPost is a single article in the content system.
type BlogPost struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"authorId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// CreatePostParams is the payload for creating a post.
type CreatePostParams struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Publish    bool     `json:"publish"`
}

// UpdatePostParams is the payload for updating a post. Nil pointers leave the
// field untouched.
type UpdatePostParams struct {
	Title      *string   `json:"title"`
	Excerpt    *string   `json:"excerpt"`
	Content    *string   `json:"content"`
	CoverImage *string   `json:"coverImage"`
	Tags       *[]string `json:"tags"`
	Publish    *bool     `json:"publish"`
}

// PostListParams filters and pages a post listing.
type PostListParams struct {
	Tag           string
	Status        PostStatus
	Limit         int
	Offset        int
	IncludeDrafts bool
}

// PostListResponse is a page of posts.
type PostListResponse struct {
	Posts      []BlogPost `json:"posts"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}
