package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/matheuskafuri/newsdesk/internal/ai"
	"github.com/matheuskafuri/newsdesk/internal/news"
)

// ErrGenerationFailed is ai.ErrGenerationFailed, re-exported for callers
// that only deal with the enhancement stage.
var ErrGenerationFailed = ai.ErrGenerationFailed

// Policy decides what a failed enhancement does to the run.
type Policy int

const (
	// PolicySkip keeps the item with its original body.
	PolicySkip Policy = iota
	// PolicyAbort stops at the first failure.
	PolicyAbort
)

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "skip"
}

// Style selects the prompt.
type Style int

const (
	StyleSummary Style = iota
	StyleAnalysis
)

// Stats counts what EnhanceAll did.
type Stats struct {
	Enhanced int
	Skipped  int
}

// Enhancer rewrites item bodies through a text generator.
type Enhancer struct {
	gen    ai.Generator
	style  Style
	policy Policy
	log    *slog.Logger
}

func New(gen ai.Generator, style Style, policy Policy, log *slog.Logger) *Enhancer {
	return &Enhancer{gen: gen, style: style, policy: policy, log: log}
}

// Enhance returns a copy of it whose body is the generated text. All other
// fields are unchanged.
func (e *Enhancer) Enhance(ctx context.Context, it news.Item) (news.Item, error) {
	text, err := e.gen.Generate(ctx, buildPrompt(e.style, it))
	if err != nil {
		if !errors.Is(err, ErrGenerationFailed) {
			err = fmt.Errorf("%v: %w", err, ErrGenerationFailed)
		}
		return it, fmt.Errorf("enhancing %q: %w", it.Title, err)
	}
	text = stripThinking(text)
	if text == "" {
		return it, fmt.Errorf("enhancing %q: empty output: %w", it.Title, ErrGenerationFailed)
	}
	return it.WithBody(text), nil
}

// EnhanceAll enhances items one at a time, preserving order. Under
// PolicySkip a failed item keeps its original body; under PolicyAbort the
// first failure is returned along with the items handled so far.
func (e *Enhancer) EnhanceAll(ctx context.Context, items []news.Item) ([]news.Item, Stats, error) {
	var st Stats
	out := make([]news.Item, 0, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return out, st, err
		}
		enhanced, err := e.Enhance(ctx, it)
		if err != nil {
			if e.policy == PolicyAbort {
				return out, st, err
			}
			st.Skipped++
			e.log.Warn("keeping original body", "item", i+1, "title", it.Title, "err", err)
			out = append(out, it)
			continue
		}
		st.Enhanced++
		e.log.Debug("enhanced", "item", i+1, "title", it.Title)
		out = append(out, enhanced)
	}
	return out, st, nil
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinking removes reasoning blocks that R1-style models emit before
// their answer, including an unterminated trailing block.
func stripThinking(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	if i := strings.Index(s, "<think>"); i >= 0 {
		s = s[:i]
	}
	// Some models omit the opening tag.
	if i := strings.Index(s, "</think>"); i >= 0 {
		s = s[i+len("</think>"):]
	}
	return strings.TrimSpace(s)
}
