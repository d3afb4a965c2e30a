package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/logger"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Search results</title>
  <item>
    <title>Fed raises rates</title>
    <link>https://example.com/fed</link>
    <description>&lt;p&gt;The central bank moved again.&lt;/p&gt;</description>
    <pubDate>Sat, 01 Mar 2025 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://example.com/untitled</link>
    <pubDate>Sat, 01 Mar 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Old news</title>
    <link>https://example.com/old</link>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Markets rally</title>
    <link>https://example.com/rally</link>
    <description>Stocks climbed.</description>
    <pubDate>Sun, 02 Mar 2025 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func rssServer(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query().Get("q")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetch(t *testing.T) {
	var q string
	srv := rssServer(t, http.StatusOK, sampleRSS, &q)
	f := NewRSSFetcher([]config.Feed{{Name: "Test Wire", URL: srv.URL + "/rss?q={query}", Enabled: true}}, logger.Discard())

	items, err := f.Fetch(context.Background(), Query{
		Topic:   "federal reserve",
		Require: []string{"usa"},
		Since:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if q != "federal reserve usa" {
		t.Errorf("expected topic substituted, got %q", q)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (untitled skipped, old filtered), got %d", len(items))
	}
	if items[0].Title != "Fed raises rates" || items[1].Title != "Markets rally" {
		t.Errorf("unexpected items: %q, %q", items[0].Title, items[1].Title)
	}
	if items[0].Source != "Test Wire" {
		t.Errorf("expected feed name as source, got %q", items[0].Source)
	}
	if items[0].Body != "The central bank moved again." {
		t.Errorf("expected HTML stripped, got %q", items[0].Body)
	}
}

func TestRSSFetchPartialFailure(t *testing.T) {
	good := rssServer(t, http.StatusOK, sampleRSS, nil)
	bad := rssServer(t, http.StatusBadGateway, "", nil)
	f := NewRSSFetcher([]config.Feed{
		{Name: "Bad", URL: bad.URL, Enabled: true},
		{Name: "Good", URL: good.URL, Enabled: true},
	}, logger.Discard())

	items, err := f.Fetch(context.Background(), Query{Topic: "x", Limit: 1})
	if err != nil {
		t.Fatalf("one good feed should be enough: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected limit applied, got %d", len(items))
	}
}

func TestRSSFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, "", ErrSourceUnavailable},
		{"garbage", http.StatusOK, "this is not a feed", ErrSchemaMismatch},
		{"all items bad", http.StatusOK, `<rss version="2.0"><channel><item><title>x</title></item></channel></rss>`, ErrSchemaMismatch},
	}
	for _, tt := range tests {
		srv := rssServer(t, tt.status, tt.body, nil)
		f := NewRSSFetcher([]config.Feed{{Name: "Only", URL: srv.URL, Enabled: true}}, logger.Discard())
		_, err := f.Fetch(context.Background(), Query{Topic: "x"})
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestRSSFetchNoFeeds(t *testing.T) {
	f := NewRSSFetcher(nil, logger.Discard())
	if _, err := f.Fetch(context.Background(), Query{Topic: "x"}); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}
