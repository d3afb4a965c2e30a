package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/logger"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

// env is what every command needs after startup: config, keys and a logger.
type env struct {
	cfg   *config.Config
	creds config.Credentials
	log   *slog.Logger
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	creds.Provider = cfg.AI.Provider
	return &env{
		cfg:   cfg,
		creds: creds,
		log:   logger.New(cmd.ErrOrStderr(), flagVerbose),
	}, nil
}

// openArchive returns nil when archiving is disabled or the database cannot
// be opened; runs still succeed without history.
func (e *env) openArchive(cmd *cobra.Command) *archive.Archive {
	if !e.cfg.Archive.Enabled {
		return nil
	}
	db, err := archive.Open(config.ArchivePath())
	if err != nil {
		tui.Warn(cmd.ErrOrStderr(), "run history disabled: %v", err)
		return nil
	}
	return db
}

// parseDate reads a YYYY-MM-DD flag value. endOfDay moves the result to the
// last instant of that day so --to is inclusive.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// fileName turns a topic into a safe file name stem.
func fileName(topic string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.', r == ' ':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(topic))
	clean = strings.Trim(clean, ". ")
	if clean == "" {
		return "report"
	}
	return clean
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
