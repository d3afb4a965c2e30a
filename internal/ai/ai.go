package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/config"
)

// ErrGenerationFailed wraps every failure of a generation call, including
// calls that succeed with empty output.
var ErrGenerationFailed = errors.New("generation failed")

// Prompt is one system+user exchange.
type Prompt struct {
	System string
	User   string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Option configures a provider built by New.
type Option func(*options)

type options struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL points the provider at a different host (for testing).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default 60s-timeout client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// New creates a Generator from the given AI config.
func New(cfg config.AIConfig, apiKey string, opts ...Option) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AI not configured: %w", config.ErrMissingCredential)
	}

	o := options{client: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	switch cfg.Provider {
	case "", "together":
		model := cfg.Model
		if model == "" {
			model = "deepseek-ai/DeepSeek-R1-Distill-Llama-70B-free"
		}
		return &chatProvider{
			name:      "together",
			endpoint:  orDefault(o.baseURL, "https://api.together.xyz") + "/v1/chat/completions",
			apiKey:    apiKey,
			model:     model,
			maxTokens: maxTokens,
			temp:      cfg.Temperature,
			together:  true,
			client:    o.client,
		}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &chatProvider{
			name:      "openai",
			endpoint:  orDefault(o.baseURL, "https://api.openai.com") + "/v1/chat/completions",
			apiKey:    apiKey,
			model:     model,
			maxTokens: maxTokens,
			temp:      cfg.Temperature,
			client:    o.client,
		}, nil
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return &claudeProvider{
			endpoint:  orDefault(o.baseURL, "https://api.anthropic.com") + "/v1/messages",
			apiKey:    apiKey,
			model:     model,
			maxTokens: maxTokens,
			client:    o.client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: together, openai, claude)", cfg.Provider)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func failed(provider string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", provider, fmt.Sprintf(format, args...), ErrGenerationFailed)
}
