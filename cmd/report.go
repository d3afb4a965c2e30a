package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/ai"
	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/browser"
	"github.com/matheuskafuri/newsdesk/internal/classify"
	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/enhance"
	"github.com/matheuskafuri/newsdesk/internal/extract"
	"github.com/matheuskafuri/newsdesk/internal/feed"
	"github.com/matheuskafuri/newsdesk/internal/filter"
	"github.com/matheuskafuri/newsdesk/internal/pipeline"
	"github.com/matheuskafuri/newsdesk/internal/report"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

// runOptions are the flags shared by report, analyze and schedule.
type runOptions struct {
	days       string
	limit      int
	keywords   []string
	categories []string
	from       string
	to         string
	source     string
	require    []string
	fullText   bool
	noEnhance  bool
	strict     bool

	output       string
	htmlFallback bool
	open         bool
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.StringVar(&o.days, "days", "", "how far back to search (e.g. 10d, 36h); default from config")
	f.IntVar(&o.limit, "limit", 0, "maximum number of articles; default from config")
	f.StringArrayVarP(&o.keywords, "keyword", "k", nil, "keep articles mentioning this word (repeatable)")
	f.StringArrayVarP(&o.categories, "category", "c", nil, "keep articles in this category (repeatable, aliases like fin, tech)")
	f.StringVar(&o.from, "from", "", "keep articles published on or after this date (YYYY-MM-DD)")
	f.StringVar(&o.to, "to", "", "keep articles published on or before this date (YYYY-MM-DD)")
	f.StringVar(&o.source, "source", "", "news source: newsapi or rss; default from config")
	f.StringArrayVar(&o.require, "require", nil, "term every result must mention, e.g. India (repeatable)")
	f.BoolVar(&o.fullText, "full-text", false, "download full article text before summarizing")
	f.BoolVar(&o.noEnhance, "no-enhance", false, "keep article descriptions instead of generating summaries")
	f.BoolVar(&o.strict, "strict", false, "abort on the first failed summary instead of keeping the original text")
}

func addOutputFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.BoolVar(&o.htmlFallback, "html-fallback", false, "write an .html report if the PDF cannot be rendered")
	f.BoolVar(&o.open, "open", false, "open the report when done")
}

var reportOpts runOptions

var reportCmd = &cobra.Command{
	Use:   "report [topic]",
	Short: "Fetch, summarize and write a PDF report for a topic",
	Long: `Search recent news for a topic, summarize each article and write the
result to <topic>.pdf.

Examples:
  newsdesk report Tesla
  newsdesk report "Reliance" --require India --days 7
  newsdesk report fed -k rate -c fin --no-enhance -o fed.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, err := argOrAsk(args, "Enter the company or topic to search for:", "Tesla", "newsdesk report <topic>")
		if err != nil {
			return err
		}
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		db := e.openArchive(cmd)
		if db != nil {
			defer db.Close()
		}

		out := reportOpts.output
		if out == "" {
			out = filepath.Join(e.cfg.Report.OutputDir, fileName(topic)+".pdf")
		}

		w := cmd.OutOrStdout()
		tui.Header(w, "Report: %s", topic)
		res, err := runReport(cmd.Context(), e, &reportOpts, db, topic, out)
		if errors.Is(err, report.ErrEmptyInput) {
			return fmt.Errorf("no articles found for %q: %w", topic, err)
		}
		if err != nil {
			return err
		}
		printRunSummary(cmd, e, res)

		if reportOpts.open {
			if err := browser.Open(res.Output); err != nil {
				tui.Warn(cmd.ErrOrStderr(), "could not open %s: %v", res.Output, err)
			}
		}
		return nil
	},
}

func init() {
	addRunFlags(reportCmd, &reportOpts)
	addOutputFlags(reportCmd, &reportOpts)
	reportCmd.Flags().StringVarP(&reportOpts.output, "output", "o", "", "output path (default <topic>.pdf)")
}

func runReport(ctx context.Context, e *env, o *runOptions, db *archive.Archive, topic, out string) (pipeline.Result, error) {
	p, req, err := buildRun(e, o, db, topic, enhance.StyleSummary)
	if err != nil {
		return pipeline.Result{}, err
	}
	req.Output = out
	p.Renderer = report.NewPDFRenderer(e.cfg.Report.Font)
	if o.htmlFallback {
		p.Fallback = report.HTMLRenderer{}
		p.FallbackExt = ".html"
	}
	return p.Run(ctx, req)
}

// buildRun checks credentials for the chosen stages, then assembles the
// pipeline and request. Nothing is fetched before every key is present.
func buildRun(e *env, o *runOptions, db *archive.Archive, topic string, style enhance.Style) (*pipeline.Pipeline, pipeline.Request, error) {
	source := e.cfg.Source
	if o.source != "" {
		source = o.source
	}
	needs := []config.Need{}
	if source == config.SourceNewsAPI {
		needs = append(needs, config.NeedNews)
	}
	if !o.noEnhance {
		needs = append(needs, config.NeedText)
	}
	if err := e.creds.Require(needs...); err != nil {
		return nil, pipeline.Request{}, err
	}

	query, err := buildQuery(e.cfg, o, topic)
	if err != nil {
		return nil, pipeline.Request{}, err
	}
	criteria, err := buildCriteria(o)
	if err != nil {
		return nil, pipeline.Request{}, err
	}
	if !criteria.From.IsZero() && criteria.From.Before(query.Since) {
		query.Since = criteria.From
	}

	p := &pipeline.Pipeline{Logger: e.log}
	switch source {
	case config.SourceNewsAPI:
		p.Fetcher = feed.NewNewsAPIFetcher(e.creds.NewsKey, e.log)
	case config.SourceRSS:
		feeds := e.cfg.EnabledFeeds()
		if len(feeds) == 0 {
			return nil, pipeline.Request{}, fmt.Errorf("source rss has no enabled feeds in config")
		}
		p.Fetcher = feed.NewRSSFetcher(feeds, e.log)
	default:
		return nil, pipeline.Request{}, fmt.Errorf("unknown source %q (want %s or %s)", source, config.SourceNewsAPI, config.SourceRSS)
	}

	if o.fullText {
		p.Extractor = extract.New(e.log, extract.WithTimeout(15*time.Second))
	}
	if !o.noEnhance {
		gen, err := ai.New(e.cfg.AI, e.creds.TextKey())
		if err != nil {
			return nil, pipeline.Request{}, err
		}
		policy := enhance.PolicySkip
		if o.strict {
			policy = enhance.PolicyAbort
		}
		p.Enhancer = enhance.New(gen, style, policy, e.log)
	}
	if db != nil {
		p.Archive = db
	}

	return p, pipeline.Request{Query: query, Criteria: criteria}, nil
}

func buildQuery(cfg *config.Config, o *runOptions, topic string) (feed.Query, error) {
	lookback := cfg.LookbackDuration()
	if o.days != "" {
		d, err := config.ParseDays(o.days)
		if err != nil || d <= 0 {
			return feed.Query{}, fmt.Errorf("invalid --days value %q", o.days)
		}
		lookback = d
	}
	limit := cfg.GetLimit()
	if o.limit > 0 {
		limit = o.limit
	}
	return feed.Query{
		Topic:    topic,
		Limit:    limit,
		Since:    time.Now().Add(-lookback),
		Language: cfg.Language,
		Require:  o.require,
	}, nil
}

func buildCriteria(o *runOptions) (filter.Criteria, error) {
	from, err := parseDate(o.from, false)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("--from: %w", err)
	}
	to, err := parseDate(o.to, true)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("--to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return filter.Criteria{}, fmt.Errorf("--to %s is before --from %s", o.to, o.from)
	}

	var categories []string
	for _, c := range o.categories {
		cat, err := classify.ResolveAlias(c)
		if err != nil {
			return filter.Criteria{}, err
		}
		categories = append(categories, string(cat))
	}
	return filter.Criteria{
		Keywords:   o.keywords,
		From:       from,
		To:         to,
		Categories: categories,
	}, nil
}

func printRunSummary(cmd *cobra.Command, e *env, res pipeline.Result) {
	w := cmd.OutOrStdout()
	tui.Step(w, "%d fetched, %d matched", res.Fetched, res.Matched)
	if res.Enhanced > 0 || res.Skipped > 0 {
		tui.Step(w, "%d summarized, %d kept original text", res.Enhanced, res.Skipped)
	}
	if res.Skipped > 0 && res.Enhanced == 0 {
		tui.Warn(cmd.ErrOrStderr(), "no summaries were generated; check %s", config.EnvKeyFor(e.cfg.AI.Provider))
	}
	if res.Output != "" {
		tui.Success(w, "Report saved to %s", res.Output)
	}
}
