package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/news"
)

var (
	ErrEmptyInput = errors.New("no items to report")
	ErrRender     = errors.New("render failed")
)

// Document is a rendered-format-independent report.
type Document struct {
	Title     string
	Subtitle  string
	Generated time.Time
	Themes    []string
	Sections  []Section
}

// Section is one news item as it appears in a report.
type Section struct {
	Heading     string
	Meta        string
	Body        string
	URL         string
	ReadingTime int
}

// Options tunes Build.
type Options struct {
	Subtitle  string
	Generated time.Time
}

// Renderer turns a document into bytes of some format.
type Renderer interface {
	Render(doc Document, w io.Writer) error
}

// Build creates one section per item, in order.
func Build(title string, items []news.Item, opts Options) Document {
	generated := opts.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	doc := Document{
		Title:     title,
		Subtitle:  opts.Subtitle,
		Generated: generated,
		Sections:  make([]Section, 0, len(items)),
	}
	titles := make([]string, 0, len(items))
	for _, it := range items {
		body := strings.TrimSpace(it.Body)
		if body == "" {
			body = "No content available."
		}
		doc.Sections = append(doc.Sections, Section{
			Heading:     it.Title,
			Meta:        metaLine(it),
			Body:        body,
			URL:         it.URL,
			ReadingTime: estimateReadTime(body),
		})
		titles = append(titles, it.Title)
	}
	doc.Themes = themes(titles, 3)
	return doc
}

func metaLine(it news.Item) string {
	parts := []string{it.Source}
	if !it.Published.IsZero() {
		parts = append(parts, it.Published.Format("2006-01-02 15:04"))
	}
	if it.Category != "" {
		parts = append(parts, it.Category)
	}
	return strings.Join(parts, " · ")
}

// estimateReadTime returns whole minutes at 200 words per minute, at least 1.
func estimateReadTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Write renders doc to path. An empty document is rejected before anything
// touches the filesystem, and a failed render leaves no file behind.
func Write(doc Document, path string, r Renderer) error {
	if len(doc.Sections) == 0 {
		return ErrEmptyInput
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrRender, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := r.Render(doc, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	// CreateTemp opens files 0600; reports are meant to be shared.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// WriteWithFallback tries primary at path. If that fails with ErrRender,
// fallback renders to path with its extension replaced by ext. It returns
// the path actually written.
func WriteWithFallback(doc Document, path string, primary, fallback Renderer, ext string) (string, error) {
	err := Write(doc, path, primary)
	if err == nil || !errors.Is(err, ErrRender) {
		return path, err
	}
	alt := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if ferr := Write(doc, alt, fallback); ferr != nil {
		return "", fmt.Errorf("%v; fallback: %w", err, ferr)
	}
	return alt, nil
}
