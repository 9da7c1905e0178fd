package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	goaway "github.com/TwiN/go-away"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smartgiftfinder/giftfinder/internal/cache"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/models"
	"github.com/smartgiftfinder/giftfinder/internal/sources"
	"github.com/smartgiftfinder/giftfinder/internal/tagging"
)

const (
	defaultMaxItems = 8
	draftCacheTTL   = 15 * time.Minute
)

// Service assembles blog drafts from gathered gift-guide source material.
// Drafts are returned to the editor unsaved; publishing goes through the
// normal blog write path.
type Service struct {
	fetchers []sources.Fetcher
	tagger   *tagging.Tagger
	logger   *logging.Logger
	drafts   *cache.Cache[*models.GeneratedDraft]
	profanity *goaway.ProfanityDetector
}

// NewService creates a draft generation service.
func NewService(fetchers []sources.Fetcher, tagger *tagging.Tagger, logger *logging.Logger) *Service {
	return &Service{
		fetchers:  fetchers,
		tagger:    tagger,
		logger:    logger,
		drafts:    cache.New[*models.GeneratedDraft](draftCacheTTL),
		profanity: goaway.NewProfanityDetector(),
	}
}

// GenerateDraft builds a draft for the given topic. Identical requests within
// the cache TTL reuse the previous draft instead of re-fetching sources.
func (s *Service) GenerateDraft(ctx context.Context, params models.GenerateDraftParams) (*models.GeneratedDraft, error) {
	topic := strings.TrimSpace(params.Topic)
	if topic == "" {
		return nil, &models.ValidationError{Field: "topic", Message: "topic is required"}
	}
	maxItems := params.MaxItems
	if maxItems <= 0 || maxItems > 20 {
		maxItems = defaultMaxItems
	}

	cacheKey := strings.ToLower(topic) + "|" + strings.ToLower(params.Occasion)
	if draft, ok := s.drafts.Get(cacheKey); ok {
		return draft, nil
	}

	items := s.gather(ctx)
	items = s.selectRelevant(items, topic, params.Keywords, maxItems)

	title := buildTitle(topic, params.Occasion)
	content := buildContent(title, topic, items)

	tags := s.tagger.InferTags(title, content)
	if params.Occasion != "" {
		tags = mergeTag(tags, strings.TrimSpace(params.Occasion))
	}
	sort.Strings(tags)

	draft := &models.GeneratedDraft{
		Slug:      Slugify(title),
		Title:     title,
		Excerpt:   buildExcerpt(topic, params.Occasion),
		Content:   content,
		Tags:      tags,
		Sources:   items,
		CreatedAt: time.Now().UTC(),
	}

	s.drafts.Set(cacheKey, draft)
	return draft, nil
}

// gather fans out to every fetcher and collects whatever arrives; a failing
// source is logged and skipped, never fatal to the draft.
func (s *Service) gather(ctx context.Context) []models.SourceItem {
	var wg sync.WaitGroup
	results := make(chan sources.FetchResult, len(s.fetchers))

	for _, fetcher := range s.fetchers {
		wg.Add(1)
		go func(f sources.Fetcher) {
			defer wg.Done()

			items, err := f.Fetch(ctx)
			results <- sources.FetchResult{
				Items:  items,
				Source: f.Name(),
				Error:  err,
			}
		}(fetcher)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []models.SourceItem
	for result := range results {
		if result.Error != nil {
			s.logger.Warn("Failed to fetch from source", logging.WithFields(map[string]interface{}{
				"source": result.Source,
				"error":  result.Error.Error(),
			}))
			continue
		}
		all = append(all, result.Items...)
	}
	return all
}

// selectRelevant keeps items mentioning the topic or a keyword, screens out
// profane material, and caps the list. Relevant items sort newest first.
func (s *Service) selectRelevant(items []models.SourceItem, topic string, keywords []string, maxItems int) []models.SourceItem {
	terms := make([]string, 0, len(keywords)+1)
	for _, w := range append([]string{topic}, keywords...) {
		if trimmed := strings.ToLower(strings.TrimSpace(w)); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}

	var selected []models.SourceItem
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Summary)
		if !matchesAny(text, terms) {
			continue
		}
		if s.profanity.IsProfane(item.Title) || s.profanity.IsProfane(item.Summary) {
			s.logger.Debug("Dropped profane source item", logging.WithField("url", item.URL))
			continue
		}
		selected = append(selected, item)
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].PublishedAt.After(selected[j].PublishedAt)
	})
	if len(selected) > maxItems {
		selected = selected[:maxItems]
	}
	return selected
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

func buildTitle(topic, occasion string) string {
	occasion = strings.TrimSpace(occasion)
	if occasion != "" {
		return fmt.Sprintf("%s Gift Ideas: %s", titleCaser.String(occasion), topic)
	}
	return fmt.Sprintf("Gift Ideas: %s", topic)
}

func buildExcerpt(topic, occasion string) string {
	if occasion = strings.TrimSpace(occasion); occasion != "" {
		return fmt.Sprintf("Hand-picked %s gift ideas for %s, curated from our latest sources.", occasion, topic)
	}
	return fmt.Sprintf("Hand-picked gift ideas for %s, curated from our latest sources.", topic)
}

func buildContent(title, topic string, items []models.SourceItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Finding the right gift for %s is hard. We pulled together the ideas below from our curated sources to get you started.\n\n", topic)

	if len(items) == 0 {
		b.WriteString("## Ideas\n\n_No source material matched this topic yet. Add your own picks here._\n")
		return b.String()
	}

	for i, item := range items {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, item.Title)
		if item.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", item.Summary)
		}
		fmt.Fprintf(&b, "[See it here](%s)\n\n", item.URL)
	}

	return b.String()
}

func mergeTag(tags []string, tag string) []string {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return tags
		}
	}
	return append(tags, tag)
}
