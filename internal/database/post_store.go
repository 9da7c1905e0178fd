package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smartgiftfinder/giftfinder/internal/models"
)

// PostStore handles blog post persistence.
type PostStore struct {
	db *DB
}

// NewPostStore creates a new post store.
func NewPostStore(db *DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, slug, title, excerpt, content, cover_image, tags, status, author_id, created_at, updated_at, published_at`

// Create inserts a post.
func (s *PostStore) Create(ctx context.Context, authorID string, params models.CreatePostParams) (*models.BlogPost, error) {
	status := models.PostStatusDraft
	var publishedAt interface{}
	if params.Publish {
		status = models.PostStatusPublished
		publishedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO blog_posts (id, slug, title, excerpt, content, cover_image, tags, status, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + postColumns

	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.Slug, params.Title, nullString(params.Excerpt), params.Content,
		nullString(params.CoverImage), pq.Array(params.Tags), status, nullString(authorID), publishedAt,
	)

	post, err := scanPost(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("post with slug %s: %w", params.Slug, models.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetByID retrieves a post by id.
func (s *PostStore) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetBySlug retrieves a post by slug.
func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1`
	return s.getOne(ctx, query, strings.ToLower(strings.TrimSpace(slug)))
}

// List returns a filtered page of posts, newest first.
func (s *PostStore) List(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if !params.IncludeDrafts {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, models.PostStatusPublished)
	} else if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, params.Status)
	}
	if params.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", len(args)+1))
		args = append(args, params.Tag)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM blog_posts WHERE ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+postColumns+`
		FROM blog_posts
		WHERE %s
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.BlogPost, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return &models.PostListResponse{
		Posts:      posts,
		TotalCount: total,
		Page:       (offset / limit) + 1,
		PageSize:   limit,
	}, nil
}

// Update applies the non-nil fields of params to a post.
func (s *PostStore) Update(ctx context.Context, id string, params models.UpdatePostParams) (*models.BlogPost, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}

	addSet := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, val)
	}

	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Excerpt != nil {
		addSet("excerpt", nullString(*params.Excerpt))
	}
	if params.Content != nil {
		addSet("content", *params.Content)
	}
	if params.CoverImage != nil {
		addSet("cover_image", nullString(*params.CoverImage))
	}
	if params.Tags != nil {
		addSet("tags", pq.Array(*params.Tags))
	}
	if params.Publish != nil {
		if *params.Publish {
			addSet("status", models.PostStatusPublished)
			sets = append(sets, "published_at = COALESCE(published_at, NOW())")
		} else {
			addSet("status", models.PostStatusDraft)
		}
	}

	query := fmt.Sprintf(`
		UPDATE blog_posts SET %s WHERE id = $%d
		RETURNING `+postColumns, strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)

	post, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// Delete removes a post.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostStore) getOne(ctx context.Context, query string, arg interface{}) (*models.BlogPost, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.BlogPost, error) {
	post := &models.BlogPost{}
	var excerpt, coverImage, authorID sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(
		&post.ID, &post.Slug, &post.Title, &excerpt, &post.Content, &coverImage,
		pq.Array(&post.Tags), &post.Status, &authorID, &post.CreatedAt, &post.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	if excerpt.Valid {
		post.Excerpt = excerpt.String
	}
	if coverImage.Valid {
		post.CoverImage = coverImage.String
	}
	if authorID.Valid {
		post.AuthorID = authorID.String
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return post, nil
}
