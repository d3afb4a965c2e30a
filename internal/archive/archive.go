package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

// Run kinds.
const (
	KindReport  = "report"
	KindAnalyze = "analyze"
	KindImage   = "imagine"
)

// Run is one recorded command invocation.
type Run struct {
	ID        string
	Kind      string
	Topic     string
	Output    string
	ItemCount int
	Enhanced  int
	CreatedAt time.Time
}

// Stats summarizes the archive.
type Stats struct {
	Runs  int
	Items int
	Size  int64
}

// Archive is an append-mostly history of runs. Nothing in it feeds back
// into a pipeline.
type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			topic      TEXT NOT NULL DEFAULT '',
			output     TEXT NOT NULL DEFAULT '',
			item_count INTEGER NOT NULL DEFAULT 0,
			enhanced   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS run_items (
			run_id    TEXT NOT NULL REFERENCES runs(id),
			position  INTEGER NOT NULL,
			title     TEXT NOT NULL,
			source    TEXT NOT NULL,
			url       TEXT NOT NULL DEFAULT '',
			category  TEXT NOT NULL DEFAULT '',
			published DATETIME,
			enhanced  INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	var first error
	for _, db := range []*sql.DB{a.readDB, a.writeDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordRun stores run and the items that went into it, in order. An empty
// ID gets a fresh UUID and a zero CreatedAt becomes now. It returns the ID.
func (a *Archive) RecordRun(run Run, items []news.Item) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ItemCount == 0 {
		run.ItemCount = len(items)
	}

	tx, err := a.writeDB.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, kind, topic, output, item_count, enhanced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Kind, run.Topic, run.Output, run.ItemCount, run.Enhanced, run.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_items (run_id, position, title, source, url, category, published, enhanced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, it := range items {
		var published any
		if !it.Published.IsZero() {
			published = it.Published.UTC()
		}
		if _, err := stmt.Exec(run.ID, i, it.Title, it.Source, it.URL, it.Category, published, it.Enhanced()); err != nil {
			return "", fmt.Errorf("inserting item %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first.
func (a *Archive) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.readDB.Query(`
		SELECT id, kind, topic, output, item_count, enhanced, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Topic, &r.Output, &r.ItemCount, &r.Enhanced, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entry is one archived item of a run. Bodies are not archived.
type Entry struct {
	news.Item
	Enhanced bool
}

// RunItems returns the items recorded for a run, in report order.
func (a *Archive) RunItems(id string) ([]Entry, error) {
	rows, err := a.readDB.Query(`
		SELECT title, source, url, category, published, enhanced
		FROM run_items WHERE run_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run items: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			published sql.NullTime
		)
		if err := rows.Scan(&e.Title, &e.Source, &e.URL, &e.Category, &published, &e.Enhanced); err != nil {
			return nil, fmt.Errorf("scanning run item: %w", err)
		}
		if published.Valid {
			e.Published = published.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes runs older than olderThan along with their items and
// reclaims the space.
func (a *Archive) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()

	tx, err := a.writeDB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM run_items WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("deleting run items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		if _, err := a.writeDB.Exec("VACUUM"); err != nil {
			return deleted, fmt.Errorf("vacuum: %w", err)
		}
	}
	return deleted, nil
}

// Stats counts runs and items and reports the size of the file at dbPath.
func (a *Archive) Stats(dbPath string) (Stats, error) {
	var s Stats
	err := a.readDB.QueryRow(`
		SELECT (SELECT COUNT(*) FROM runs), (SELECT COUNT(*) FROM run_items)
	`).Scan(&s.Runs, &s.Items)
	if err != nil {
		return s, fmt.Errorf("counting runs: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return s, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	s.Size = info.Size()
	return s, nil
}
