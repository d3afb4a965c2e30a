package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/matheuskafuri/newsdesk/internal/news"
)

const defaultMaxRunes = 4000

// Extractor replaces truncated item descriptions with the readable text of
// the linked article.
type Extractor struct {
	httpClient *http.Client
	maxRunes   int
	log        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-article HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.httpClient.Timeout = d
	}
}

// WithMaxRunes caps the extracted text length.
func WithMaxRunes(n int) Option {
	return func(e *Extractor) {
		e.maxRunes = n
	}
}

func New(log *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRunes:   defaultMaxRunes,
		log:        log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text fetches rawURL and returns its main readable text.
func (e *Extractor) Text(ctx context.Context, rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return "", fmt.Errorf("invalid URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsdesk/1.0)")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}

	content := strings.Join(strings.Fields(article.TextContent), " ")
	if runes := []rune(content); len(runes) > e.maxRunes {
		content = string(runes[:e.maxRunes])
	}
	return content, nil
}

// Expand returns items whose description and body hold the full article
// text. Items that cannot be fetched, or whose text is not longer than
// what was already there, are returned unchanged.
func (e *Extractor) Expand(ctx context.Context, items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.URL == "" {
			continue
		}
		text, err := e.Text(ctx, it.URL)
		if err != nil {
			e.log.Debug("full text unavailable", "url", it.URL, "err", err)
			continue
		}
		if len(text) <= len(it.Description) {
			continue
		}
		it.Description = text
		out[i] = it.WithBody(text)
	}
	return out
}
