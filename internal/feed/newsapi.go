package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

const (
	defaultNewsAPIURL   = "https://newsapi.org/v2/everything"
	maxResponseBytes    = 4 << 20
	maxDescriptionRunes = 2000
)

// NewsAPIFetcher queries the newsapi.org "everything" endpoint.
type NewsAPIFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// Option configures a NewsAPIFetcher.
type Option func(*NewsAPIFetcher)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(f *NewsAPIFetcher) { f.baseURL = u }
}

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *NewsAPIFetcher) { f.client = c }
}

func NewNewsAPIFetcher(apiKey string, log *slog.Logger, opts ...Option) *NewsAPIFetcher {
	f := &NewsAPIFetcher{
		apiKey:  apiKey,
		baseURL: defaultNewsAPIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type newsAPIResponse struct {
	Status   string            `json:"status"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Articles []json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (f *NewsAPIFetcher) Fetch(ctx context.Context, q Query) ([]news.Item, error) {
	u, err := f.buildURL(q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: building request: %w", err)
	}
	req.Header.Set("X-Api-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %v: %w", err, ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("newsapi: reading response: %v: %w", err, ErrSourceUnavailable)
	}

	var env newsAPIResponse
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, fmt.Errorf("newsapi %d: %s: %w", resp.StatusCode, truncate(msg, 200), ErrSourceUnavailable)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("newsapi: decoding response: %v: %w", decodeErr, ErrSchemaMismatch)
	}
	if env.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s: %w", env.Status, env.Message, ErrSourceUnavailable)
	}

	return collect(f.log, "newsapi", len(env.Articles), func(i int) (news.Item, error) {
		return newsAPIItem(i, env.Articles[i])
	}, q.Limit)
}

func (f *NewsAPIFetcher) buildURL(q Query) (string, error) {
	topic := strings.TrimSpace(q.Topic)
	if topic == "" {
		return "", fmt.Errorf("newsapi: empty topic")
	}
	terms := []string{topic}
	for _, r := range q.Require {
		if r = strings.TrimSpace(r); r != "" {
			terms = append(terms, r)
		}
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, " AND "))
	if !q.Since.IsZero() {
		params.Set("from", q.Since.Format("2006-01-02"))
	}
	if !q.Until.IsZero() {
		params.Set("to", q.Until.Format("2006-01-02"))
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	params.Set("sortBy", "popularity")
	if q.Limit > 0 {
		size := q.Limit
		if size > 100 {
			size = 100
		}
		params.Set("pageSize", strconv.Itoa(size))
	}
	return f.baseURL + "?" + params.Encode(), nil
}

func newsAPIItem(i int, raw json.RawMessage) (news.Item, error) {
	var a newsAPIArticle
	if err := json.Unmarshal(raw, &a); err != nil {
		return news.Item{}, &RecordError{Index: i, Reason: "malformed article: " + err.Error()}
	}
	published, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return news.Item{}, &RecordError{Index: i, Reason: fmt.Sprintf("bad publishedAt %q", a.PublishedAt)}
	}

	desc := stripHTML(a.Description)
	if content := stripHTML(trimContentMarker(a.Content)); len(content) > len(desc) {
		desc = content
	}
	desc = truncate(desc, maxDescriptionRunes)

	return validated(i, news.Item{
		Title:       strings.TrimSpace(a.Title),
		Source:      strings.TrimSpace(a.Source.Name),
		URL:         a.URL,
		Published:   published,
		Description: desc,
		Body:        desc,
	})
}
