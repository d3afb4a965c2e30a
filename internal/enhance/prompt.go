package enhance

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/newsdesk/internal/ai"
	"github.com/matheuskafuri/newsdesk/internal/news"
)

const summarySystem = "You are a helpful assistant providing investment insights by summarising news articles in simple language."

const summaryInstruction = "Please summarise the following news article in 2-3 simple sentences. " +
	"Highlight the key news points that a trader or stock broker might use to assess investment potential. " +
	"Explain any technical term in brackets () and do not include any internal analysis or 'thinking' text."

const analysisSystem = "You are a helpful assistant summarising financial news for market research in simple language."

const analysisInstruction = "Please analyse the following news article and summarise it in 2-3 sentences using simple language. " +
	"Highlight the key points and explain if this news is good or bad for the company's financial health. " +
	"If any technical term appears, please explain it in brackets (). End with one line of the form " +
	"\"Verdict: good\", \"Verdict: bad\" or \"Verdict: neutral\"."

func buildPrompt(style Style, it news.Item) ai.Prompt {
	system, instruction := summarySystem, summaryInstruction
	if style == StyleAnalysis {
		system, instruction = analysisSystem, analysisInstruction
	}
	return ai.Prompt{
		System: system,
		User:   instruction + "\n\n" + articleText(it),
	}
}

func articleText(it news.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", orNA(it.Title))
	fmt.Fprintf(&sb, "Source: %s\n", orNA(it.Source))
	fmt.Fprintf(&sb, "Content: %s\n", orNA(it.Body))
	if it.URL != "" {
		fmt.Fprintf(&sb, "URL: %s\n", it.URL)
	}
	if !it.Published.IsZero() {
		fmt.Fprintf(&sb, "PublishedAt: %s", it.Published.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Verdict extracts the trailing "Verdict: x" line of an analysis, or "".
func Verdict(analysis string) string {
	lines := strings.Split(strings.TrimSpace(analysis), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "verdict:") {
			return strings.TrimSpace(lower[len("verdict:"):])
		}
		return ""
	}
	return ""
}
