package tagging

import (
	"strings"
)

// Tagger infers occasion and interest tags from draft text using keyword rules.
type Tagger struct {
	rules map[string][]string
}

func New() *Tagger {
	return &Tagger{
		rules: map[string][]string{
			"Birthday":      {"birthday", "turning", "b-day", "another year"},
			"Christmas":     {"christmas", "xmas", "stocking stuffer", "holiday season", "secret santa"},
			"Valentines":    {"valentine", "romantic", "anniversary", "date night"},
			"Mothers Day":   {"mother's day", "mothers day", "for mom", "for her mom"},
			"Fathers Day":   {"father's day", "fathers day", "for dad"},
			"Wedding":       {"wedding", "bridal", "newlywed", "registry", "engagement"},
			"Graduation":    {"graduation", "graduate", "new job", "first apartment"},
			"Baby":          {"baby shower", "newborn", "new parents", "nursery"},
			"Tech":          {"gadget", "smart home", "headphones", "charger", "tech lover"},
			"Home":          {"kitchen", "decor", "cozy", "candle", "home chef", "mug"},
			"Outdoors":      {"camping", "hiking", "outdoor", "garden", "adventure"},
			"Kids":          {"kids", "toddler", "toy", "lego", "board game"},
			"Food":          {"chocolate", "coffee", "snack", "gourmet", "wine", "tea"},
			"Wellness":      {"spa", "self-care", "yoga", "skincare", "relaxation"},
			"Handmade":      {"handmade", "personalized", "custom", "engraved", "diy"},
			"Budget":        {"under $25", "under $50", "cheap", "affordable", "budget"},
			"Luxury":        {"luxury", "splurge", "premium", "high-end"},
			"Last Minute":   {"last minute", "last-minute", "e-gift", "digital gift"},
			"Experience":    {"experience", "tickets", "class", "subscription", "membership"},
		},
	}
}

// InferTags returns every tag whose keyword list matches the text.
func (t *Tagger) InferTags(title, content string) []string {
	combined := strings.ToLower(title + " " + content)
	tags := make(map[string]bool)

	for tag, keywords := range t.rules {
		for _, keyword := range keywords {
			if strings.Contains(combined, keyword) {
				tags[tag] = true
				break
			}
		}
	}

	result := make([]string, 0, len(tags))
	for tag := range tags {
		result = append(result, tag)
	}
	return result
}

func (t *Tagger) AddRule(tag string, keywords []string) {
	t.rules[tag] = keywords
}

func (t *Tagger) RemoveRule(tag string) {
	delete(t.rules, tag)
}
