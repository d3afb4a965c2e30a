package filter

import (
	"testing"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

var (
	t1 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
)

func sampleItems() []news.Item {
	return []news.Item{
		{Title: "Fed raises rates", Source: "Reuters", Body: "The central bank moved again.", Category: "finance", Published: t1},
		{Title: "Local bakery opens", Source: "Gazette", Body: "Fresh bread on Main Street.", Category: "lifestyle", Published: t2},
		{Title: "Chipmaker earnings beat", Source: "Bloomberg", Body: "Interest RATE worries fade.", Category: "technology", Published: t2},
	}
}

func titles(items []news.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestApplyEmptyCriteriaIsIdentity(t *testing.T) {
	items := sampleItems()
	got := Apply(items, Criteria{})
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d changed: %+v", i, got[i])
		}
	}
}

func TestApplyBlankValuesAreEmpty(t *testing.T) {
	c := Criteria{Keywords: []string{"", "  "}, Categories: []string{""}}
	if !c.IsEmpty() {
		t.Error("blank keywords and categories should count as empty")
	}
}

func TestApplyKeywordAndCategory(t *testing.T) {
	got := Apply(sampleItems()[:2], Criteria{
		Keywords:   []string{"rate"},
		Categories: []string{"finance"},
	})
	if len(got) != 1 || got[0].Title != "Fed raises rates" {
		t.Fatalf("expected only the Fed item, got %v", titles(got))
	}
}

func TestApplyKeywordCaseInsensitiveInBody(t *testing.T) {
	got := Apply(sampleItems(), Criteria{Keywords: []string{"Rate"}})
	want := []string{"Fed raises rates", "Chipmaker earnings beat"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("position %d: want %q, got %q", i, want[i], got[i].Title)
		}
	}
}

func TestApplyAnyKeywordMatches(t *testing.T) {
	got := Apply(sampleItems(), Criteria{Keywords: []string{"bread", "chipmaker"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %v", titles(got))
	}
}

func TestApplyDateRange(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want int
	}{
		{"from only", Criteria{From: t1.Add(time.Hour)}, 2},
		{"to only", Criteria{To: t1}, 1},
		{"inclusive bounds", Criteria{From: t1, To: t2}, 3},
		{"empty window", Criteria{From: t2.Add(time.Hour), To: t2.Add(2 * time.Hour)}, 0},
	}
	for _, tt := range tests {
		got := Apply(sampleItems(), tt.c)
		if len(got) != tt.want {
			t.Errorf("%s: expected %d items, got %d", tt.name, tt.want, len(got))
		}
	}
}

func TestApplyCategoryCaseInsensitive(t *testing.T) {
	got := Apply(sampleItems(), Criteria{Categories: []string{"Technology", "LIFESTYLE"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %v", titles(got))
	}
	if got[0].Title != "Local bakery opens" {
		t.Errorf("expected input order, got %v", titles(got))
	}
}

func TestApplyIsOrderedSubsequence(t *testing.T) {
	items := sampleItems()
	criteria := []Criteria{
		{Keywords: []string{"e"}},
		{Categories: []string{"finance", "technology"}},
		{From: t2},
		{Keywords: []string{"zzz"}},
	}
	for _, c := range criteria {
		got := Apply(items, c)
		j := 0
		for _, it := range got {
			for j < len(items) && items[j] != it {
				j++
			}
			if j == len(items) {
				t.Fatalf("output %v is not a subsequence of input", titles(got))
			}
			j++
		}
	}
}

func TestApplyNoMatchIsEmptyNotNil(t *testing.T) {
	got := Apply(sampleItems(), Criteria{Keywords: []string{"volcano"}})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
