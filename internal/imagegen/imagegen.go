package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/ai"
	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/report"
)

// ErrGenerationFailed is shared with the text providers.
var ErrGenerationFailed = ai.ErrGenerationFailed

const (
	defaultBaseURL = "https://api.together.xyz"
	defaultModel   = "black-forest-labs/FLUX.1-schnell-Free"
	defaultSteps   = 4
)

// Ratio is an output aspect ratio with a fixed pixel size.
type Ratio struct {
	Name          string
	Width, Height int
}

var (
	Wide     = Ratio{"16:9", 1024, 576}
	Standard = Ratio{"4:3", 1024, 768}
	Square   = Ratio{"1:1", 1024, 1024}
)

// Ratios lists the supported ratios in menu order.
var Ratios = []Ratio{Wide, Standard, Square}

// ParseRatio maps a name like "16:9" to a Ratio. Unknown names fall back to
// 4:3 and report false.
func ParseRatio(s string) (Ratio, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Ratios {
		if r.Name == s {
			return r, true
		}
	}
	return Standard, false
}

func (r Ratio) String() string {
	return fmt.Sprintf("%s (%dx%d)", r.Name, r.Width, r.Height)
}

// Request describes one image.
type Request struct {
	Prompt string
	Ratio  Ratio
}

// Client calls the Together image generation API.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	steps    int
	seed     int
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(u, "/") + "/v1/images/generations" }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func New(cfg config.ImageConfig, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image generation not configured: %w", config.ErrMissingCredential)
	}
	c := &Client{
		endpoint: defaultBaseURL + "/v1/images/generations",
		apiKey:   apiKey,
		model:    cfg.Model,
		steps:    cfg.Steps,
		seed:     cfg.Seed,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.steps <= 0 {
		c.steps = defaultSteps
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	Seed           int    `json:"seed"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate returns the decoded image bytes.
func (c *Client) Generate(ctx context.Context, r Request) ([]byte, error) {
	if strings.TrimSpace(r.Prompt) == "" {
		return nil, fmt.Errorf("empty prompt: %w", ErrGenerationFailed)
	}
	ratio := r.Ratio
	if ratio.Width == 0 || ratio.Height == 0 {
		ratio = Standard
	}
	body, err := json.Marshal(imageRequest{
		Model:          c.model,
		Prompt:         r.Prompt,
		Width:          ratio.Width,
		Height:         ratio.Height,
		Steps:          c.steps,
		N:              1,
		Seed:           c.seed,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %v: %w", err, ErrGenerationFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %v: %w", err, ErrGenerationFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image API: %v: %w", err, ErrGenerationFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("image API %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(b)), ErrGenerationFailed)
	}

	var ir imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("decoding response: %v: %w", err, ErrGenerationFailed)
	}
	if ir.Error != nil {
		return nil, fmt.Errorf("image API: %s: %w", ir.Error.Message, ErrGenerationFailed)
	}
	if len(ir.Data) == 0 || ir.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image in response: %w", ErrGenerationFailed)
	}
	img, err := base64.StdEncoding.DecodeString(ir.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %v: %w", err, ErrGenerationFailed)
	}
	return img, nil
}

// Save writes data to path, creating the parent directory.
func Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", report.ErrRender, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", report.ErrRender, err)
	}
	return nil
}
