package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
)

type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type AIConfig struct {
	Provider    string  `yaml:"provider"` // "together", "openai" or "claude"
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type ImageConfig struct {
	Model string `yaml:"model"`
	Steps int    `yaml:"steps"`
	Seed  int    `yaml:"seed"`
}

type ReportConfig struct {
	Font      string `yaml:"font"` // optional TTF for full unicode output
	OutputDir string `yaml:"output_dir"`
}

type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Retention string `yaml:"retention"`
}

type Config struct {
	Source   string        `yaml:"source"`
	Lookback string        `yaml:"lookback"`
	Limit    int           `yaml:"limit"`
	Language string        `yaml:"language"`
	Feeds    []Feed        `yaml:"feeds"`
	AI       AIConfig      `yaml:"ai"`
	Image    ImageConfig   `yaml:"image"`
	Report   ReportConfig  `yaml:"report"`
	Archive  ArchiveConfig `yaml:"archive"`
}

// LookbackDuration returns how far back to search, defaulting to 10 days.
func (c *Config) LookbackDuration() time.Duration {
	d, err := ParseDays(c.Lookback)
	if err != nil || d <= 0 {
		return 10 * 24 * time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	d, err := ParseDays(c.Archive.Retention)
	if err != nil || d <= 0 {
		return 90 * 24 * time.Hour
	}
	return d
}

// GetLimit returns the item limit, defaulting to 20.
func (c *Config) GetLimit() int {
	if c.Limit <= 0 {
		return 20
	}
	return c.Limit
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// ParseDays parses a duration that also accepts an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsdesk", "config.yaml")
}

func ArchivePath() string {
	return filepath.Join(xdg.DataHome, "newsdesk", "archive.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, or the default location when path is empty.
// Values missing from the file keep their embedded defaults.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, _ := loadDefaults()
	cfg.Feeds = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultFeeds(cfg, defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeDefaultFeeds keeps user feeds, refreshes the URL of feeds that share
// a name with a default, and appends defaults the user has not listed.
func mergeDefaultFeeds(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		index[f.Name] = i
	}
	for _, d := range defaults.Feeds {
		if i, ok := index[d.Name]; ok {
			cfg.Feeds[i].URL = d.URL
			continue
		}
		cfg.Feeds = append(cfg.Feeds, d)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Source {
	case SourceNewsAPI, SourceRSS:
	default:
		return fmt.Errorf("unknown source %q (valid: newsapi, rss)", cfg.Source)
	}
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(strings.ReplaceAll(f.URL, "{query}", "q"))
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	return nil
}
