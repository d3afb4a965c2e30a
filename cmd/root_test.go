package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/config"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		endOfDay bool
		want     time.Time
		err      bool
	}{
		{"", false, time.Time{}, false},
		{"2025-03-01", false, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), false},
		{"2025-03-01", true, time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.Local), false},
		{"03/01/2025", false, time.Time{}, true},
		{"yesterday", false, time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.input, tt.endOfDay)
		if tt.err {
			if err == nil {
				t.Errorf("parseDate(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q, %v) = %v, want %v", tt.input, tt.endOfDay, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tesla", "Tesla"},
		{"Tata Motors", "Tata Motors"},
		{"AT&T / Verizon", "AT_T _ Verizon"},
		{"../etc/passwd", "_etc_passwd"},
		{"  ", "report"},
		{"...", "report"},
	}
	for _, tt := range tests {
		if got := fileName(tt.input); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScheduledOutput(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 5, 0, 0, time.UTC)
	got := scheduledOutput("reports", "Tesla", at)
	if want := filepath.Join("reports", "Tesla-2025-03-01-0805.pdf"); got != want {
		t.Errorf("scheduledOutput() = %q, want %q", got, want)
	}
}

func TestBuildCriteria(t *testing.T) {
	o := &runOptions{
		keywords:   []string{"rate"},
		categories: []string{"fin", "Technology"},
		from:       "2025-03-01",
		to:         "2025-03-05",
	}
	c, err := buildCriteria(o)
	if err != nil {
		t.Fatalf("buildCriteria: %v", err)
	}
	if len(c.Categories) != 2 || c.Categories[0] != "Finance" || c.Categories[1] != "Technology" {
		t.Errorf("unexpected categories %v", c.Categories)
	}
	if c.To.Day() != 5 || c.To.Hour() != 23 {
		t.Errorf("--to should be inclusive, got %v", c.To)
	}
}

func TestBuildCriteriaErrors(t *testing.T) {
	tests := []runOptions{
		{categories: []string{"gardening"}},
		{from: "2025-03-05", to: "2025-03-01"},
		{from: "March"},
	}
	for _, o := range tests {
		if _, err := buildCriteria(&o); err == nil {
			t.Errorf("buildCriteria(%+v): expected error", o)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	cfg := &config.Config{Limit: 15, Lookback: "10d", Language: "en"}

	q, err := buildQuery(cfg, &runOptions{require: []string{"India"}}, "Reliance")
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}
	if q.Topic != "Reliance" || q.Limit != 15 || q.Language != "en" || len(q.Require) != 1 {
		t.Errorf("unexpected query %+v", q)
	}
	if since := time.Since(q.Since); since < 239*time.Hour || since > 241*time.Hour {
		t.Errorf("expected 10 day lookback, got %v", since)
	}

	q, err = buildQuery(cfg, &runOptions{days: "2d", limit: 5}, "x")
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}
	if q.Limit != 5 || time.Since(q.Since) > 49*time.Hour {
		t.Errorf("flags should override config: %+v", q)
	}

	if _, err := buildQuery(cfg, &runOptions{days: "soon"}, "x"); err == nil {
		t.Error("expected error for bad --days")
	}
}

func TestBuildRunChecksCredentialsFirst(t *testing.T) {
	e := &env{cfg: &config.Config{Source: config.SourceNewsAPI}}
	_, _, err := buildRun(e, &runOptions{}, nil, "Tesla", 0)
	if err == nil {
		t.Fatal("expected missing credential error")
	}
	for _, key := range []string{config.EnvNewsKey, config.EnvGenerationKey} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
}

func TestBuildRunNeedsProviderKey(t *testing.T) {
	e := &env{
		cfg:   &config.Config{Source: config.SourceRSS, AI: config.AIConfig{Provider: "claude"}},
		creds: config.Credentials{GenerationKey: "together-only", Provider: "claude"},
	}
	_, _, err := buildRun(e, &runOptions{}, nil, "Tesla", 0)
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
	if !strings.Contains(err.Error(), config.EnvAnthropicKey) {
		t.Errorf("error should name %s: %v", config.EnvAnthropicKey, err)
	}
}

func TestBuildRunRSSWithoutEnhance(t *testing.T) {
	e := &env{cfg: &config.Config{
		Source: config.SourceRSS,
		Feeds:  []config.Feed{{Name: "Google News", URL: "https://news.google.com/rss/search?q={query}", Enabled: true}},
	}}
	p, req, err := buildRun(e, &runOptions{noEnhance: true}, nil, "Tesla", 0)
	if err != nil {
		t.Fatalf("rss without enhancement needs no keys: %v", err)
	}
	if p.Enhancer != nil || p.Archive != nil {
		t.Error("expected no enhancer and no archive")
	}
	if req.Query.Topic != "Tesla" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90 * 24 * time.Hour); got != "90d" {
		t.Errorf("formatDuration(90d) = %q", got)
	}
	if got := formatDuration(12 * time.Hour); got != "12h" {
		t.Errorf("formatDuration(12h) = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
