package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/smartgiftfinder/giftfinder/internal/models"
)

// GiftStore handles the curated gift catalog.
type GiftStore struct {
	db *DB
}

// NewGiftStore creates a new gift store.
func NewGiftStore(db *DB) *GiftStore {
	return &GiftStore{db: db}
}

const giftColumns = `id, name, category, occasions, price, currency, product_url, image_url, description, popularity, updated_at`

// Search returns catalog items matching a free-text query and optional category.
func (s *GiftStore) Search(ctx context.Context, query string, category models.GiftCategory, limit int) ([]models.GiftItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if q := strings.TrimSpace(query); q != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+q+"%")
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, category)
	}

	sqlQuery := fmt.Sprintf(`
		SELECT `+giftColumns+`
		FROM gift_catalog
		WHERE %s
		ORDER BY popularity DESC, name ASC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), len(args)+1)
	args = append(args, limit)

	return s.query(ctx, sqlQuery, args...)
}

// GetPopular returns the most popular items, optionally scoped to a category.
func (s *GiftStore) GetPopular(ctx context.Context, category models.GiftCategory, limit int) ([]models.GiftItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if category != "" {
		query := `SELECT ` + giftColumns + ` FROM gift_catalog WHERE category = $1 ORDER BY popularity DESC LIMIT $2`
		return s.query(ctx, query, category, limit)
	}
	query := `SELECT ` + giftColumns + ` FROM gift_catalog ORDER BY popularity DESC LIMIT $1`
	return s.query(ctx, query, limit)
}

// Get retrieves a single item. Returns nil when not found.
func (s *GiftStore) Get(ctx context.Context, id string) (*models.GiftItem, error) {
	query := `SELECT ` + giftColumns + ` FROM gift_catalog WHERE id = $1`
	item, err := scanGift(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift item: %w", err)
	}
	return item, nil
}

func (s *GiftStore) query(ctx context.Context, query string, args ...interface{}) ([]models.GiftItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift catalog: %w", err)
	}
	defer rows.Close()

	var items []models.GiftItem
	for rows.Next() {
		item, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gift catalog: %w", err)
	}
	return items, nil
}

func scanGift(row rowScanner) (*models.GiftItem, error) {
	item := &models.GiftItem{}
	var imageURL, description sql.NullString

	err := row.Scan(
		&item.ID, &item.Name, &item.Category, pq.Array(&item.Occasions), &item.Price,
		&item.Currency, &item.ProductURL, &imageURL, &description, &item.Popularity, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		item.ImageURL = imageURL.String
	}
	if description.Valid {
		item.Description = description.String
	}
	if item.Occasions == nil {
		item.Occasions = []string{}
	}
	return item, nil
}
