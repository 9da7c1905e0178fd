package gifts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/cache"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
)

const popularCacheTTL = 5 * time.Minute

type catalogReader interface {
	Search(ctx context.Context, query string, category models.GiftCategory, limit int) ([]models.GiftItem, error)
	GetPopular(ctx context.Context, category models.GiftCategory, limit int) ([]models.GiftItem, error)
	Get(ctx context.Context, id string) (*models.GiftItem, error)
}

// Service serves gift recommendations from the curated catalog.
type Service struct {
	catalog catalogReader
	logger  *logging.Logger
	popular *cache.Cache[[]models.GiftItem]
}

// ServiceError represents a gift service error surfaced to the caller.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewService creates a new gift finder service.
func NewService(catalog catalogReader, logger *logging.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
		popular: cache.New[[]models.GiftItem](popularCacheTTL),
	}
}

// Search finds catalog gifts matching the request. An empty query falls back
// to the popular list for the requested category.
func (s *Service) Search(ctx context.Context, params models.GiftSearchParams) (*models.GiftSearchResponse, error) {
	limit := normalizeLimit(params.Limit)
	offset := normalizeOffset(params.Offset)

	if s.catalog == nil {
		return emptyResponse(limit, offset, params.Query), nil
	}

	fetchLimit := limit + offset
	if fetchLimit > 100 {
		fetchLimit = 100
	}

	var (
		items []models.GiftItem
		err   error
	)
	if strings.TrimSpace(params.Query) == "" {
		items, err = s.getPopularItems(ctx, params.Category, fetchLimit)
	} else {
		items, err = s.catalog.Search(ctx, params.Query, params.Category, fetchLimit)
		if err != nil {
			s.logger.Warn("Catalog search failed", logging.WithField("error", err.Error()))
			err = &ServiceError{Message: "search failed"}
		}
	}
	if err != nil {
		return nil, err
	}

	filtered := applyFilters(items, params)
	filtered = sortItems(filtered, params.Sort)
	paged := paginate(filtered, limit, offset)

	return &models.GiftSearchResponse{
		Items:      paged,
		TotalCount: len(filtered),
		Page:       (offset / limit) + 1,
		PageSize:   limit,
		Query:      params.Query,
	}, nil
}

// Get returns a single catalog gift by id.
func (s *Service) Get(ctx context.Context, id string) (*models.GiftItem, error) {
	if s.catalog == nil {
		return nil, &ServiceError{Message: "catalog unavailable"}
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ServiceError{Message: "gift ID required"}
	}

	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &ServiceError{Message: "gift not found"}
	}
	return item, nil
}

func (s *Service) getPopularItems(ctx context.Context, category models.GiftCategory, limit int) ([]models.GiftItem, error) {
	cacheKey := fmt.Sprintf("popular:%s:%d", category, limit)
	if items, ok := s.popular.Get(cacheKey); ok {
		return items, nil
	}

	items, err := s.catalog.GetPopular(ctx, category, limit)
	if err != nil {
		s.logger.Warn("Failed to get popular gifts", logging.WithField("error", err.Error()))
		return nil, &ServiceError{Message: "failed to fetch catalog items"}
	}

	s.popular.Set(cacheKey, items)
	return items, nil
}

func applyFilters(items []models.GiftItem, params models.GiftSearchParams) []models.GiftItem {
	occasion := strings.ToLower(strings.TrimSpace(params.Occasion))

	filtered := make([]models.GiftItem, 0, len(items))
	for _, item := range items {
		if params.MaxPrice > 0 && item.Price > params.MaxPrice {
			continue
		}
		if occasion != "" && !hasOccasion(item, occasion) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func hasOccasion(item models.GiftItem, occasion string) bool {
	for _, o := range item.Occasions {
		if strings.ToLower(o) == occasion {
			return true
		}
	}
	return false
}

func sortItems(items []models.GiftItem, sortKey string) []models.GiftItem {
	switch sortKey {
	case "price_asc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case "price_desc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Popularity > items[j].Popularity })
	}
	return items
}

func paginate(items []models.GiftItem, limit, offset int) []models.GiftItem {
	if offset >= len(items) {
		return []models.GiftItem{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func emptyResponse(limit, offset int, query string) *models.GiftSearchResponse {
	return &models.GiftSearchResponse{
		Items:      []models.GiftItem{},
		TotalCount: 0,
		Page:       (offset / limit) + 1,
		PageSize:   limit,
		Query:      query,
	}
}
