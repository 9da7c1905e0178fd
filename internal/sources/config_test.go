package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadFeedsConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"sources": [
			{"name": "gift-blog", "type": "feed", "url": "https://example.com/rss", "enabled": true},
			{"name": "catalog", "type": "pages", "urls": ["https://example.com/p/1", "https://example.com/p/2"], "enabled": true},
			{"name": "retired", "type": "feed", "url": "https://old.example.com/rss", "enabled": false}
		]
	}`)

	config, err := LoadFeedsConfig(path)
	if err != nil {
		t.Fatalf("LoadFeedsConfig error = %v", err)
	}
	if len(config.Sources) != 3 {
		t.Fatalf("len(Sources) = %d, want 3", len(config.Sources))
	}
	if config.Sources[0].Name != "gift-blog" || config.Sources[0].Type != "feed" {
		t.Errorf("first source = %+v", config.Sources[0])
	}
	if len(config.Sources[1].URLs) != 2 {
		t.Errorf("len(URLs) = %d, want 2", len(config.Sources[1].URLs))
	}
}

func TestLoadFeedsConfig_MissingFile(t *testing.T) {
	if _, err := LoadFeedsConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFeedsConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{"sources": [`)
	if _, err := LoadFeedsConfig(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestBuildFetchers(t *testing.T) {
	config := &FeedsConfig{Sources: []SourceConfig{
		{Name: "gift-blog", Type: "feed", URL: "https://example.com/rss", Enabled: true},
		{Name: "catalog", Type: "pages", URLs: []string{"https://example.com/p/1"}, Enabled: true},
		{Name: "disabled", Type: "feed", URL: "https://example.com/other", Enabled: false},
		{Name: "no-url", Type: "feed", Enabled: true},
		{Name: "unknown", Type: "scraper", URL: "https://example.com/x", Enabled: true},
	}}

	fetchers := BuildFetchers(config)
	if len(fetchers) != 2 {
		t.Fatalf("len(fetchers) = %d, want 2", len(fetchers))
	}
	if fetchers[0].Name() != "gift-blog" {
		t.Errorf("fetchers[0].Name() = %q, want %q", fetchers[0].Name(), "gift-blog")
	}
	if fetchers[1].Name() != "catalog" {
		t.Errorf("fetchers[1].Name() = %q, want %q", fetchers[1].Name(), "catalog")
	}
}
