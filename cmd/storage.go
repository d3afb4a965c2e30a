package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

var (
	flagPruneOlderThan string
	flagHistoryLimit   int
	flagHistoryRun     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := archive.Open(config.ArchivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		if flagHistoryRun != "" {
			entries, err := db.RunItems(flagHistoryRun)
			if err != nil {
				return fmt.Errorf("reading run %s: %w", flagHistoryRun, err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no items recorded for run %s", flagHistoryRun)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.EntriesTable(entries))
			return nil
		}

		runs, err := db.ListRuns(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.HistoryTable(runs))
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old runs from the history",
	Long: `Delete recorded runs older than the retention period and reclaim disk space.
Generated reports and images are not touched.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := archive.Open(config.ArchivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.ArchivePath()
		db, err := archive.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		s, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Archive: %s\n", dbPath)
		fmt.Fprintf(w, "Runs: %d\n", s.Runs)
		fmt.Fprintf(w, "Articles: %d\n", s.Items)
		fmt.Fprintf(w, "Size: %s\n", formatBytes(s.Size))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&flagHistoryRun, "run", "", "show the articles of one run by ID")
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
}
