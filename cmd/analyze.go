package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/enhance"
	"github.com/matheuskafuri/newsdesk/internal/report"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

var (
	analyzeOpts  runOptions
	analyzeWidth int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [topic]",
	Short: "Print a per-article analysis table for a topic",
	Long: `Search recent news for a topic and ask the model whether each article is
good or bad for the company's financial health. Results are printed as a table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, err := argOrAsk(args, "Enter the company name to search for:", "Tesla", "newsdesk analyze <topic>")
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

		p, req, err := buildRun(e, &analyzeOpts, db, topic, enhance.StyleAnalysis)
		if err != nil {
			return err
		}
		res, err := p.Analyze(cmd.Context(), req)
		if errors.Is(err, report.ErrEmptyInput) {
			return fmt.Errorf("no articles found for %q: %w", topic, err)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		tui.Header(w, "News analysis for %s", topic)
		fmt.Fprintln(w, tui.AnalysisTable(res.Items, analyzeWidth))

		counts := map[string]int{}
		for _, it := range res.Items {
			if v := enhance.Verdict(it.Body); v != "" {
				counts[v]++
			}
		}
		if len(counts) > 0 {
			tui.Step(w, "verdicts: %d good, %d bad, %d neutral", counts["good"], counts["bad"], counts["neutral"])
		}
		return nil
	},
}

func init() {
	addRunFlags(analyzeCmd, &analyzeOpts)
	analyzeCmd.Flags().IntVar(&analyzeWidth, "width", 160, "table width in columns")
}
