package news

import (
	"errors"
	"strings"
	"time"
)

// Item is one retrieved article as it moves through the pipeline.
type Item struct {
	Title     string
	Source    string
	URL       string
	Published time.Time
	Category  string

	// Description is the body as fetched. Body starts out equal to it and
	// may later be replaced by generated text.
	Description string
	Body        string
}

var (
	errNoTitle  = errors.New("item has no title")
	errNoSource = errors.New("item has no source")
)

// Validate reports whether the item may enter the pipeline.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return errNoTitle
	}
	if strings.TrimSpace(it.Source) == "" {
		return errNoSource
	}
	return nil
}

// WithBody returns a copy of the item whose body is text.
func (it Item) WithBody(text string) Item {
	it.Body = text
	return it
}

// WithCategory returns a copy of the item tagged with category.
func (it Item) WithCategory(category string) Item {
	it.Category = category
	return it
}

// Enhanced reports whether the body differs from what was fetched.
func (it Item) Enhanced() bool {
	return it.Body != it.Description
}
