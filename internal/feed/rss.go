package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/news"
	"github.com/mmcdole/gofeed"
)

// RSSFetcher searches topic-templated RSS/Atom feeds. A feed URL may carry
// a {query} placeholder that is replaced with the escaped topic.
type RSSFetcher struct {
	feeds  []config.Feed
	parser *gofeed.Parser
	client *http.Client
	log    *slog.Logger
}

func NewRSSFetcher(feeds []config.Feed, log *slog.Logger) *RSSFetcher {
	return &RSSFetcher{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Fetch queries each feed in order. A feed that fails is logged and the
// rest still run; the call fails only if every feed failed.
func (f *RSSFetcher) Fetch(ctx context.Context, q Query) ([]news.Item, error) {
	if len(f.feeds) == 0 {
		return nil, fmt.Errorf("rss: no feeds enabled: %w", ErrSourceUnavailable)
	}

	var (
		items []news.Item
		errs  []error
	)
	for _, feed := range f.feeds {
		got, err := f.fetchOne(ctx, feed, q)
		if err != nil {
			f.log.Warn("feed failed", "feed", feed.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		items = append(items, got...)
	}
	if len(errs) == len(f.feeds) {
		return nil, fmt.Errorf("rss: %v: %w", errors.Join(errs...), dominantCause(errs))
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// dominantCause is ErrSchemaMismatch only when every feed answered but
// none could be parsed.
func dominantCause(errs []error) error {
	for _, err := range errs {
		if !errors.Is(err, ErrSchemaMismatch) {
			return ErrSourceUnavailable
		}
	}
	return ErrSchemaMismatch
}

func (f *RSSFetcher) fetchOne(ctx context.Context, feed config.Feed, q Query) ([]news.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, expandQuery(feed.URL, q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %v: %w", feed.Name, err, ErrSourceUnavailable)
	}
	req.Header.Set("User-Agent", "newsdesk/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %v: %w", feed.Name, err, ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d: %w", feed.Name, resp.StatusCode, ErrSourceUnavailable)
	}

	parsed, err := f.parser.Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", feed.Name, err, ErrSchemaMismatch)
	}

	entries := make([]*gofeed.Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if inWindow(it, q) {
			entries = append(entries, it)
		}
	}
	return collect(f.log, feed.Name, len(entries), func(i int) (news.Item, error) {
		return rssItem(i, entries[i], feed.Name)
	}, 0)
}

func expandQuery(template string, q Query) string {
	terms := []string{strings.TrimSpace(q.Topic)}
	for _, r := range q.Require {
		if r = strings.TrimSpace(r); r != "" {
			terms = append(terms, r)
		}
	}
	return strings.ReplaceAll(template, "{query}", url.QueryEscape(strings.Join(terms, " ")))
}

func inWindow(it *gofeed.Item, q Query) bool {
	pub := itemTime(it)
	if pub.IsZero() {
		return true
	}
	if !q.Since.IsZero() && pub.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && pub.After(q.Until) {
		return false
	}
	return true
}

func itemTime(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}

func rssItem(i int, it *gofeed.Item, feedName string) (news.Item, error) {
	pub := itemTime(it)
	if pub.IsZero() {
		return news.Item{}, &RecordError{Index: i, Reason: "no publish date"}
	}

	desc := it.Description
	if desc == "" {
		desc = it.Content
	}
	desc = truncate(stripHTML(desc), maxDescriptionRunes)

	return validated(i, news.Item{
		Title:       strings.TrimSpace(it.Title),
		Source:      feedName,
		URL:         it.Link,
		Published:   pub,
		Description: desc,
		Body:        desc,
	})
}
