package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Feeds) == 0 {
		t.Error("expected at least one default feed")
	}
	if cfg.Source != SourceNewsAPI {
		t.Errorf("expected newsapi source, got %q", cfg.Source)
	}
	if cfg.AI.Model == "" || cfg.Image.Model == "" {
		t.Error("expected default models to be set")
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestLookbackDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"10d", 10},
		{"3d", 3},
		{"48h", 2},
		{"", 10},
		{"invalid", 10},
		{"-2d", 10},
	}
	for _, tt := range tests {
		cfg := &Config{Lookback: tt.input}
		got := cfg.LookbackDuration()
		if got != time.Duration(tt.wantDays)*24*time.Hour {
			t.Errorf("LookbackDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestRetentionDuration(t *testing.T) {
	cfg := &Config{Archive: ArchiveConfig{Retention: "30d"}}
	if got := cfg.RetentionDuration(); got.Hours() != 30*24 {
		t.Errorf("expected 30d, got %v", got)
	}
	cfg.Archive.Retention = ""
	if got := cfg.RetentionDuration(); got.Hours() != 90*24 {
		t.Errorf("expected 90d default, got %v", got)
	}
}

func TestGetLimit(t *testing.T) {
	if got := (&Config{}).GetLimit(); got != 20 {
		t.Errorf("expected default limit 20, got %d", got)
	}
	if got := (&Config{Limit: 5}).GetLimit(); got != 5 {
		t.Errorf("expected limit 5, got %d", got)
	}
}

func TestEnabledFeeds(t *testing.T) {
	cfg := &Config{
		Feeds: []Feed{
			{Name: "A", Enabled: true},
			{Name: "B", Enabled: false},
			{Name: "C", Enabled: true},
		},
	}
	enabled := cfg.EnabledFeeds()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled feeds, got %d", len(enabled))
	}
	if enabled[0].Name != "A" || enabled[1].Name != "C" {
		t.Errorf("unexpected enabled feeds: %v", enabled)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `source: rss
limit: 7
feeds:
  - name: Test
    url: https://example.com/rss?q={query}
    enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceRSS || cfg.Limit != 7 {
		t.Errorf("file values not applied: source=%q limit=%d", cfg.Source, cfg.Limit)
	}
	if cfg.AI.Provider != "together" {
		t.Errorf("expected default provider to survive, got %q", cfg.AI.Provider)
	}
	if cfg.Feeds[0].Name != "Test" {
		t.Errorf("expected first feed Test, got %s", cfg.Feeds[0].Name)
	}
	if len(cfg.Feeds) <= 1 {
		t.Errorf("expected default feeds to be merged, got %d total", len(cfg.Feeds))
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Feeds) == 0 {
		t.Error("expected default feeds when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("source: twitter\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestMergeDefaultFeeds(t *testing.T) {
	cfg := &Config{
		Feeds: []Feed{
			{Name: "Existing", URL: "https://example.com/feed", Enabled: true},
			{Name: "Shared", URL: "https://old.com/feed", Enabled: false},
		},
	}
	defaults := &Config{
		Feeds: []Feed{
			{Name: "Shared", URL: "https://new.com/feed", Enabled: true},
			{Name: "NewFeed", URL: "https://new-feed.com/feed", Enabled: true},
		},
	}
	mergeDefaultFeeds(cfg, defaults)

	if len(cfg.Feeds) != 3 {
		t.Fatalf("expected 3 feeds after merge, got %d", len(cfg.Feeds))
	}
	if cfg.Feeds[1].URL != "https://new.com/feed" {
		t.Errorf("expected Shared URL updated, got %s", cfg.Feeds[1].URL)
	}
	if cfg.Feeds[1].Enabled {
		t.Error("user's enabled flag should win for shared feeds")
	}
	if cfg.Feeds[2].Name != "NewFeed" {
		t.Errorf("expected NewFeed appended, got %s", cfg.Feeds[2].Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"unknown source", Config{Source: "x"}, true},
		{"missing feed name", Config{Source: SourceRSS, Feeds: []Feed{{URL: "https://a.com"}}}, true},
		{"missing feed url", Config{Source: SourceRSS, Feeds: []Feed{{Name: "A"}}}, true},
		{"file scheme", Config{Source: SourceRSS, Feeds: []Feed{{Name: "A", URL: "file:///etc/passwd"}}}, true},
		{"negative limit", Config{Source: SourceNewsAPI, Limit: -1}, true},
		{"templated https", Config{Source: SourceRSS, Feeds: []Feed{{Name: "A", URL: "https://a.com/rss?q={query}"}}}, false},
		{"http", Config{Source: SourceNewsAPI, Feeds: []Feed{{Name: "A", URL: "http://a.com/rss"}}}, false},
	}
	for _, tt := range tests {
		err := validate(&tt.cfg)
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"d", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDays(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseDays(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDays(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}
