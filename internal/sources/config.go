package sources

import (
	"encoding/json"
	"fmt"
	"os"
)

// SourceConfig describes one configured upstream.
type SourceConfig struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // "feed" or "pages"
	URL     string   `json:"url,omitempty"`
	URLs    []string `json:"urls,omitempty"`
	Enabled bool     `json:"enabled"`
}

// FeedsConfig is the on-disk source list.
type FeedsConfig struct {
	Sources []SourceConfig `json:"sources"`
}

// LoadFeedsConfig reads the source list from a JSON file.
func LoadFeedsConfig(path string) (*FeedsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds config: %w", err)
	}

	var config FeedsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}
	return &config, nil
}

// BuildFetchers turns the enabled config entries into fetchers.
func BuildFetchers(config *FeedsConfig) []Fetcher {
	var fetchers []Fetcher
	for _, src := range config.Sources {
		if !src.Enabled {
			continue
		}
		switch src.Type {
		case "feed":
			if src.URL != "" {
				fetchers = append(fetchers, NewFeedFetcher(src.Name, src.URL))
			}
		case "pages":
			if len(src.URLs) > 0 {
				fetchers = append(fetchers, NewPageFetcher(src.Name, src.URLs))
			}
		}
	}
	return fetchers
}
