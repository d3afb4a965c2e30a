package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

var (
	// ErrSourceUnavailable means the news source could not be reached or
	// refused the request.
	ErrSourceUnavailable = errors.New("news source unavailable")
	// ErrSchemaMismatch means the source answered with records that could
	// not be turned into news items.
	ErrSchemaMismatch = errors.New("news schema mismatch")
)

// Query describes what to fetch.
type Query struct {
	Topic    string
	Limit    int
	Since    time.Time
	Until    time.Time
	Language string
	// Require lists extra terms every result must mention.
	Require []string
}

// Fetcher retrieves news items for a query, in source order.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]news.Item, error)
}

// RecordError describes one raw record that was skipped.
type RecordError struct {
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrSchemaMismatch }

// collect validates converted records, skipping bad ones. It fails with
// ErrSchemaMismatch only when there were records and none survived.
func collect(log *slog.Logger, source string, total int, convert func(i int) (news.Item, error), limit int) ([]news.Item, error) {
	items := make([]news.Item, 0, total)
	var skipped int
	for i := 0; i < total; i++ {
		it, err := convert(i)
		if err != nil {
			skipped++
			log.Debug("skipping record", "source", source, "err", err)
			continue
		}
		items = append(items, it)
	}
	if total > 0 && len(items) == 0 {
		return nil, fmt.Errorf("%s: all %d records invalid: %w", source, total, ErrSchemaMismatch)
	}
	if skipped > 0 {
		log.Info("skipped malformed records", "source", source, "skipped", skipped, "kept", len(items))
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func validated(i int, it news.Item) (news.Item, error) {
	if strings.TrimSpace(it.Title) == "[Removed]" {
		return news.Item{}, &RecordError{Index: i, Reason: "removed by publisher"}
	}
	if err := it.Validate(); err != nil {
		return news.Item{}, &RecordError{Index: i, Reason: err.Error()}
	}
	return it, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NewsAPI appends "[+1234 chars]" to truncated content.
func trimContentMarker(s string) string {
	if i := strings.LastIndex(s, "[+"); i >= 0 && strings.HasSuffix(s, "chars]") {
		return strings.TrimSpace(s[:i])
	}
	return s
}
