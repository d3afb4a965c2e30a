package filter

import (
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

// Criteria selects items. Each unset field matches everything.
type Criteria struct {
	Keywords   []string
	From       time.Time
	To         time.Time
	Categories []string
}

// IsEmpty reports whether the criteria let every item through.
func (c Criteria) IsEmpty() bool {
	return len(nonBlank(c.Keywords)) == 0 && c.From.IsZero() && c.To.IsZero() && len(nonBlank(c.Categories)) == 0
}

// Match reports whether the item satisfies all three conditions.
func (c Criteria) Match(it news.Item) bool {
	return c.matchKeywords(it) && c.matchDate(it.Published) && c.matchCategory(it.Category)
}

func (c Criteria) matchKeywords(it news.Item) bool {
	keywords := nonBlank(c.Keywords)
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(it.Title)
	body := strings.ToLower(it.Body)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if strings.Contains(title, kw) || strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

func (c Criteria) matchDate(t time.Time) bool {
	if !c.From.IsZero() && t.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && t.After(c.To) {
		return false
	}
	return true
}

func (c Criteria) matchCategory(category string) bool {
	allowed := nonBlank(c.Categories)
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, category) {
			return true
		}
	}
	return false
}

// Apply returns the items matching c, in their original order.
func Apply(items []news.Item, c Criteria) []news.Item {
	if c.IsEmpty() {
		out := make([]news.Item, len(items))
		copy(out, items)
		return out
	}
	out := make([]news.Item, 0, len(items))
	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

func nonBlank(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
