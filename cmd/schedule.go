package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/enhance"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

var (
	scheduleOpts  runOptions
	flagCronSpec  string
	flagRunNow    bool
	flagOutputDir string
	flagTimezone  string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <topic>",
	Short: "Write a report for a topic on a cron schedule",
	Long: `Run the report pipeline on a cron schedule until interrupted. Each run
writes <topic>-<YYYY-MM-DD-HHMM>.pdf so earlier reports are kept.

The schedule uses standard five-field cron syntax, e.g. "0 8 * * 1-5" for
8am on weekdays, or descriptors like "@daily".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		// Validate flags and keys once up front; a broken setup should not
		// surface only at the first tick.
		if _, _, err := buildRun(e, &scheduleOpts, nil, topic, enhance.StyleSummary); err != nil {
			return err
		}

		loc := time.Local
		if flagTimezone != "" {
			if loc, err = time.LoadLocation(flagTimezone); err != nil {
				return fmt.Errorf("invalid --tz %q: %w", flagTimezone, err)
			}
		}

		dir := flagOutputDir
		if dir == "" {
			dir = e.cfg.Report.OutputDir
		}
		db := e.openArchive(cmd)
		if db != nil {
			defer db.Close()
		}

		ctx := cmd.Context()
		w := cmd.OutOrStdout()
		job := func() {
			out := scheduledOutput(dir, topic, time.Now())
			res, err := runReport(ctx, e, &scheduleOpts, db, topic, out)
			if err != nil {
				e.log.Error("scheduled report failed", "topic", topic, "err", err)
				return
			}
			tui.Success(w, "Report saved to %s (%d articles)", res.Output, res.Matched)
		}

		c := newScheduler(loc, e.log)
		id, err := c.AddFunc(flagCronSpec, job)
		if err != nil {
			return fmt.Errorf("invalid --cron %q: %w", flagCronSpec, err)
		}

		if flagRunNow {
			job()
		}
		c.Start()
		tui.Header(w, "Scheduled %q with %q; next run %s", topic, flagCronSpec, c.Entry(id).Next.Format("2006-01-02 15:04"))
		tui.Step(w, "press ctrl+c to stop")

		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	addRunFlags(scheduleCmd, &scheduleOpts)
	scheduleCmd.Flags().StringVar(&flagCronSpec, "cron", "0 8 * * *", "cron schedule")
	scheduleCmd.Flags().BoolVar(&flagRunNow, "run-now", false, "also run once immediately")
	scheduleCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for reports; default from config")
	scheduleCmd.Flags().StringVar(&flagTimezone, "tz", "", "IANA time zone for the schedule; default local")
}

// newScheduler returns a cron scheduler in loc that drops a tick while the
// previous run of the same job is still going.
func newScheduler(loc *time.Location, log *slog.Logger) *cron.Cron {
	cl := cronLogger{log}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// cronLogger routes cron's own logging through slog. Routine scheduler
// chatter goes to debug; skipped ticks are worth a warning.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.log.Warn("previous scheduled run still in progress; skipping tick")
		return
	}
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

func scheduledOutput(dir, topic string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", fileName(topic), at.Format("2006-01-02-1504")))
}
