package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvGenerationKey = "TOGETHER_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvNewsKey       = "NEWS_API_KEY"
)

// ErrMissingCredential is returned when a required API key is not set.
var ErrMissingCredential = errors.New("missing credential")

// Need names a credential a command depends on.
type Need int

const (
	// NeedGeneration is the Together key, used for images.
	NeedGeneration Need = iota
	NeedNews
	// NeedText is the key of the configured text provider.
	NeedText
)

// Credentials holds API keys resolved once at startup.
type Credentials struct {
	GenerationKey string
	OpenAIKey     string
	AnthropicKey  string
	NewsKey       string

	// Provider is the configured text provider; empty means together.
	Provider string
}

// EnvKeyFor returns the variable holding the key for a text provider.
func EnvKeyFor(provider string) string {
	switch provider {
	case "openai":
		return EnvOpenAIKey
	case "claude":
		return EnvAnthropicKey
	default:
		return EnvGenerationKey
	}
}

// TextKey returns the key for the configured text provider.
func (c Credentials) TextKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIKey
	case "claude":
		return c.AnthropicKey
	default:
		return c.GenerationKey
	}
}

// LoadCredentials reads keys from the environment after loading any .env
// files given (or ./.env when none are). Absent files are skipped; a file
// that exists but does not parse is an error.
func LoadCredentials(envFiles ...string) (Credentials, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("reading %s: %w", f, err)
		}
	}
	return Credentials{
		GenerationKey: strings.TrimSpace(os.Getenv(EnvGenerationKey)),
		OpenAIKey:     strings.TrimSpace(os.Getenv(EnvOpenAIKey)),
		AnthropicKey:  strings.TrimSpace(os.Getenv(EnvAnthropicKey)),
		NewsKey:       strings.TrimSpace(os.Getenv(EnvNewsKey)),
	}, nil
}

// Require fails with ErrMissingCredential naming every unset key in needs.
func (c Credentials) Require(needs ...Need) error {
	var missing []string
	add := func(key, name string) {
		if key != "" {
			return
		}
		for _, m := range missing {
			if m == name {
				return
			}
		}
		missing = append(missing, name)
	}
	for _, n := range needs {
		switch n {
		case NeedGeneration:
			add(c.GenerationKey, EnvGenerationKey)
		case NeedNews:
			add(c.NewsKey, EnvNewsKey)
		case NeedText:
			add(c.TextKey(), EnvKeyFor(c.Provider))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}
