package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/classify"
	"github.com/matheuskafuri/newsdesk/internal/enhance"
	"github.com/matheuskafuri/newsdesk/internal/feed"
	"github.com/matheuskafuri/newsdesk/internal/filter"
	"github.com/matheuskafuri/newsdesk/internal/news"
	"github.com/matheuskafuri/newsdesk/internal/report"
)

// Expander replaces short item bodies with full article text.
type Expander interface {
	Expand(ctx context.Context, items []news.Item) []news.Item
}

// Enhancer rewrites item bodies.
type Enhancer interface {
	EnhanceAll(ctx context.Context, items []news.Item) ([]news.Item, enhance.Stats, error)
}

// Recorder keeps a history of runs.
type Recorder interface {
	RecordRun(run archive.Run, items []news.Item) (string, error)
}

// Pipeline runs fetch, extract, classify, filter, enhance, render and
// archive in that order. Extractor, Enhancer, Fallback and Archive are
// optional; a nil stage is skipped.
type Pipeline struct {
	Fetcher   feed.Fetcher
	Extractor Expander
	Enhancer  Enhancer
	Renderer  report.Renderer

	// Fallback renders to the output path with FallbackExt when Renderer fails.
	Fallback    report.Renderer
	FallbackExt string

	Archive Recorder
	Logger  *slog.Logger
}

// Request is one run's input.
type Request struct {
	Query    feed.Query
	Criteria filter.Criteria
	Title    string
	Output   string
}

// Result reports what each stage did.
type Result struct {
	RunID    string
	Output   string
	Fetched  int
	Matched  int
	Enhanced int
	Skipped  int
	Items    []news.Item
}

// Run produces a report file. A run whose filter leaves nothing fails with
// report.ErrEmptyInput before any generation call is made.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	res, err := p.prepare(ctx, req)
	if err != nil {
		return res, err
	}

	doc := report.Build(title(req), res.Items, report.Options{
		Subtitle:  describe(req.Criteria),
		Generated: time.Now(),
	})
	out := req.Output
	if p.Fallback != nil {
		out, err = report.WriteWithFallback(doc, req.Output, p.Renderer, p.Fallback, p.FallbackExt)
	} else {
		err = report.Write(doc, req.Output, p.Renderer)
	}
	if err != nil {
		return res, fmt.Errorf("writing report: %w", err)
	}
	res.Output = out
	p.Logger.Info("report written", "path", out, "sections", len(doc.Sections))

	res.RunID = p.record(archive.KindReport, req, res)
	return res, nil
}

// Analyze runs every stage up to and including enhancement and returns the
// items instead of rendering them.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (Result, error) {
	res, err := p.prepare(ctx, req)
	if err != nil {
		return res, err
	}
	res.RunID = p.record(archive.KindAnalyze, req, res)
	return res, nil
}

func (p *Pipeline) prepare(ctx context.Context, req Request) (Result, error) {
	var res Result

	items, err := p.Fetcher.Fetch(ctx, req.Query)
	if err != nil {
		return res, fmt.Errorf("fetching news: %w", err)
	}
	res.Fetched = len(items)
	p.Logger.Info("fetched", "items", res.Fetched, "topic", req.Query.Topic)

	if p.Extractor != nil {
		items = p.Extractor.Expand(ctx, items)
	}
	items = classify.Assign(items)

	items = filter.Apply(items, req.Criteria)
	res.Matched = len(items)
	if !req.Criteria.IsEmpty() {
		p.Logger.Info("filtered", "kept", res.Matched, "dropped", res.Fetched-res.Matched)
	}
	if res.Matched == 0 {
		return res, report.ErrEmptyInput
	}

	if p.Enhancer != nil {
		var st enhance.Stats
		items, st, err = p.Enhancer.EnhanceAll(ctx, items)
		res.Enhanced, res.Skipped = st.Enhanced, st.Skipped
		if err != nil {
			return res, fmt.Errorf("enhancing: %w", err)
		}
		p.Logger.Info("enhanced", "items", st.Enhanced, "kept_original", st.Skipped)
	}
	res.Items = items
	return res, nil
}

// record archives a finished run. A failure here is logged; the output
// already exists.
func (p *Pipeline) record(kind string, req Request, res Result) string {
	if p.Archive == nil {
		return ""
	}
	id, err := p.Archive.RecordRun(archive.Run{
		Kind:     kind,
		Topic:    req.Query.Topic,
		Output:   res.Output,
		Enhanced: res.Enhanced,
	}, res.Items)
	if err != nil {
		p.Logger.Warn("archiving run", "err", err)
		return ""
	}
	return id
}

func title(req Request) string {
	if req.Title != "" {
		return req.Title
	}
	topic := strings.TrimSpace(req.Query.Topic)
	if topic == "" {
		return "News report"
	}
	return "News report: " + topic
}

// describe renders the active criteria as a one-line subtitle.
func describe(c filter.Criteria) string {
	var parts []string
	if len(c.Keywords) > 0 {
		parts = append(parts, "keywords: "+strings.Join(c.Keywords, ", "))
	}
	if len(c.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(c.Categories, ", "))
	}
	if !c.From.IsZero() {
		parts = append(parts, "from "+c.From.Format("2006-01-02"))
	}
	if !c.To.IsZero() {
		parts = append(parts, "to "+c.To.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}
