package classify

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

// Category is a news desk an item is filed under.
type Category string

const (
	Finance       Category = "Finance"
	Technology    Category = "Technology"
	Politics      Category = "Politics"
	Health        Category = "Health"
	Science       Category = "Science"
	Sports        Category = "Sports"
	Entertainment Category = "Entertainment"
	Lifestyle     Category = "Lifestyle"
	World         Category = "World"
)

// AllCategories returns all valid categories in canonical order.
func AllCategories() []Category {
	return []Category{Finance, Technology, Politics, Health, Science, Sports, Entertainment, Lifestyle, World}
}

var categoryKeywords = map[Category][]string{
	Finance: {
		"rate", "inflation", "earnings", "revenue", "profit", "stock", "shares",
		"market", "investor", "bank", "fed", "bond", "dividend", "ipo", "merger",
		"acquisition", "quarter", "fiscal", "economy", "gdp", "sensex", "nifty",
		"central bank", "interest rate", "wall street",
	},
	Technology: {
		"software", "chip", "semiconductor", "startup", "app", "cloud", "cyber",
		"smartphone", "google", "apple", "microsoft", "openai", "robot", "data",
		"artificial intelligence", "machine learning", "ai",
	},
	Politics: {
		"election", "minister", "parliament", "senate", "congress", "president",
		"policy", "vote", "government", "campaign", "lawmaker", "party", "court",
		"prime minister",
	},
	Health: {
		"health", "hospital", "vaccine", "disease", "virus", "patient", "drug",
		"medical", "doctor", "outbreak", "cancer", "clinical",
	},
	Science: {
		"research", "scientist", "study", "space", "nasa", "climate", "species",
		"physics", "planet", "telescope", "fossil", "genome",
	},
	Sports: {
		"match", "cup", "league", "tournament", "coach", "player", "goal",
		"cricket", "football", "tennis", "olympic", "championship", "score",
	},
	Entertainment: {
		"film", "movie", "music", "album", "celebrity", "actor", "actress",
		"series", "netflix", "concert", "festival", "box office",
	},
	Lifestyle: {
		"food", "bakery", "restaurant", "travel", "fashion", "recipe", "wellness",
		"home", "shop", "opens", "cafe", "style",
	},
	World: {
		"war", "border", "refugee", "embassy", "treaty", "united nations",
		"summit", "sanctions", "conflict",
	},
}

// Aliases maps short CLI names to full category names.
var Aliases = map[string]Category{
	"fin":    Finance,
	"tech":   Technology,
	"pol":    Politics,
	"health": Health,
	"sci":    Science,
	"sport":  Sports,
	"ent":    Entertainment,
	"life":   Lifestyle,
	"world":  World,
}

// ResolveAlias maps a CLI alias or full name to a Category.
func ResolveAlias(alias string) (Category, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if cat, ok := Aliases[alias]; ok {
		return cat, nil
	}
	for _, cat := range AllCategories() {
		if strings.EqualFold(string(cat), alias) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: %s)", alias, strings.Join(valid, ", "))
}

// Classify picks the category for an article from its title and body.
// Title keywords are weighted 2x. Ties go to the earlier category and
// World is the default.
func Classify(title, body string) Category {
	titleTokens := tokenize(title)
	bodyTokens := tokenize(body)
	titleLower := strings.ToLower(title)
	bodyLower := strings.ToLower(body)

	best := World
	bestScore := 0
	for _, cat := range AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(kw, " ") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(bodyLower, kw) {
					score++
				}
				continue
			}
			score += 2 * countPrefixed(titleTokens, kw)
			score += countPrefixed(bodyTokens, kw)
		}
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}
	return best
}

// Assign returns items with a category filled in wherever it was empty.
func Assign(items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.Category) == "" {
			it = it.WithCategory(string(Classify(it.Title, it.Body)))
		}
		out[i] = it
	}
	return out
}

func countPrefixed(tokens []string, kw string) int {
	n := 0
	for _, t := range tokens {
		if t == kw || (len(kw) > 3 && strings.HasPrefix(t, kw)) {
			n++
		}
	}
	return n
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
