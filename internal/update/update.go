package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const releasesURL = "https://api.github.com/repos/matheuskafuri/newsdesk/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

// Newer reports whether the latest release differs from the running build.
func (r Result) Newer(current string) bool {
	current = strings.TrimPrefix(current, "v")
	return r.LatestVersion != "" && r.LatestVersion != current && current != "dev"
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries the GitHub Releases API.
type Checker struct {
	URL    string
	Client *http.Client
}

func NewChecker() *Checker {
	return &Checker{URL: releasesURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Latest returns the newest published release.
func (c *Checker) Latest(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("checking for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("checking for updates: HTTP %d", resp.StatusCode)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Result{}, fmt.Errorf("decoding release: %w", err)
	}
	return Result{
		LatestVersion: strings.TrimPrefix(release.TagName, "v"),
		URL:           release.HTMLURL,
	}, nil
}
