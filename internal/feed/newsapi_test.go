package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/logger"
)

const threeArticles = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {"source": {"id": null, "name": "Reuters"}, "title": "Tata Motors posts record profit",
     "description": "<p>Quarterly profit rose.</p>", "content": "Quarterly profit rose 40% on strong demand for SUVs… [+1800 chars]",
     "url": "https://reuters.com/a", "publishedAt": "2025-03-01T09:30:00Z"},
    {"source": {"id": null, "name": ""}, "title": "No source here",
     "description": "x", "url": "https://example.com/b", "publishedAt": "2025-03-01T10:00:00Z"},
    {"source": {"id": null, "name": "Mint"}, "title": "Tata Steel expands in India",
     "description": "A new plant.", "content": null,
     "url": "https://livemint.com/c", "publishedAt": "2025-03-02T08:00:00Z"}
  ]
}`

func newsServer(t *testing.T, status int, body string, seen *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewsAPIFetchSkipsBadRecords(t *testing.T) {
	var req http.Request
	srv := newsServer(t, http.StatusOK, threeArticles, &req)
	f := NewNewsAPIFetcher("key-123", logger.Discard(), WithBaseURL(srv.URL))

	items, err := f.Fetch(context.Background(), Query{
		Topic:    "Tata",
		Require:  []string{"India"},
		Limit:    10,
		Language: "en",
		Since:    time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Until:    time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 valid items, got %d", len(items))
	}
	if items[0].Source != "Reuters" || items[1].Source != "Mint" {
		t.Errorf("unexpected order or sources: %q, %q", items[0].Source, items[1].Source)
	}
	if items[0].Body != "Quarterly profit rose 40% on strong demand for SUVs…" {
		t.Errorf("expected longer content used as body, got %q", items[0].Body)
	}
	if items[0].Body != items[0].Description {
		t.Error("fetched body and description should start out equal")
	}
	if !items[0].Published.Equal(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected published time %v", items[0].Published)
	}

	q := req.URL.Query()
	if q.Get("q") != "Tata AND India" {
		t.Errorf("q = %q", q.Get("q"))
	}
	if q.Get("from") != "2025-02-20" || q.Get("to") != "2025-03-02" {
		t.Errorf("date window = %s..%s", q.Get("from"), q.Get("to"))
	}
	if q.Get("language") != "en" || q.Get("sortBy") != "popularity" || q.Get("pageSize") != "10" {
		t.Errorf("unexpected params %v", q)
	}
	if req.Header.Get("X-Api-Key") != "key-123" {
		t.Error("expected api key header")
	}
}

func TestNewsAPIFetchLimit(t *testing.T) {
	srv := newsServer(t, http.StatusOK, threeArticles, nil)
	f := NewNewsAPIFetcher("k", logger.Discard(), WithBaseURL(srv.URL))

	items, err := f.Fetch(context.Background(), Query{Topic: "Tata", Limit: 1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestNewsAPIFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, "boom", ErrSourceUnavailable},
		{"bad key", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`, ErrSourceUnavailable},
		{"status not ok", http.StatusOK, `{"status":"error","message":"rate limited"}`, ErrSourceUnavailable},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrSchemaMismatch},
		{"all records bad", http.StatusOK, `{"status":"ok","articles":[{"title":""},{"title":"x","source":{"name":"y"},"publishedAt":"yesterday"}]}`, ErrSchemaMismatch},
	}
	for _, tt := range tests {
		srv := newsServer(t, tt.status, tt.body, nil)
		f := NewNewsAPIFetcher("k", logger.Discard(), WithBaseURL(srv.URL))
		_, err := f.Fetch(context.Background(), Query{Topic: "x"})
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestNewsAPIMessageInError(t *testing.T) {
	srv := newsServer(t, http.StatusUnauthorized, `{"status":"error","message":"Your API key is invalid"}`, nil)
	f := NewNewsAPIFetcher("k", logger.Discard(), WithBaseURL(srv.URL))
	_, err := f.Fetch(context.Background(), Query{Topic: "x"})
	if err == nil || !strings.Contains(err.Error(), "Your API key is invalid") {
		t.Errorf("expected API message surfaced, got %v", err)
	}
}

func TestNewsAPIFetchEmpty(t *testing.T) {
	srv := newsServer(t, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`, nil)
	f := NewNewsAPIFetcher("k", logger.Discard(), WithBaseURL(srv.URL))

	items, err := f.Fetch(context.Background(), Query{Topic: "nothing"})
	if err != nil {
		t.Fatalf("empty result should not fail: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestNewsAPIUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := NewNewsAPIFetcher("SECRET-KEY-123", logger.Discard(), WithBaseURL(addr))
	_, err := f.Fetch(context.Background(), Query{Topic: "x"})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Errorf("API key leaked in error message: %v", err)
	}
}

func TestNewsAPIEmptyTopic(t *testing.T) {
	f := NewNewsAPIFetcher("k", logger.Discard())
	if _, err := f.Fetch(context.Background(), Query{Topic: "  "}); err == nil {
		t.Error("expected error for empty topic")
	}
}
