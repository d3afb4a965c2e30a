package report

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// themes returns up to limit terms that recur across titles, ranked by
// TF-IDF. A term must appear in at least two titles to count, and terms in
// every title carry no weight.
func themes(titles []string, limit int) []string {
	df := map[string]int{}
	tf := map[string]int{}
	for _, t := range titles {
		seen := map[string]bool{}
		for _, w := range tokenize(t) {
			tf[w]++
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	type scored struct {
		term  string
		score float64
	}
	var terms []scored
	for term, docs := range df {
		if docs < 2 {
			continue
		}
		idf := math.Log(float64(len(titles)) / float64(docs))
		if idf <= 0 {
			continue
		}
		terms = append(terms, scored{term, float64(tf[term]) * idf})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].score != terms[j].score {
			return terms[i].score > terms[j].score
		}
		return terms[i].term < terms[j].term
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.term
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "are": true, "was": true, "were": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "not": true, "how": true, "what": true, "when": true, "where": true,
	"who": true, "which": true, "why": true, "all": true, "each": true, "every": true,
	"both": true, "few": true, "more": true, "most": true, "other": true, "some": true,
	"such": true, "than": true, "too": true, "very": true, "just": true, "about": true,
	"into": true, "over": true, "after": true, "before": true, "between": true,
	"under": true, "above": true, "says": true, "said": true, "amid": true, "they": true,
	"them": true, "their": true, "your": true, "new": true, "year": true, "week": true,
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < 4 || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
