package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// R1-distilled models end turns with this token.
const deepSeekStop = "<｜end▁of▁sentence｜>"

// chatProvider speaks the OpenAI chat-completions dialect, which Together
// also serves. Together accepts a few extra sampling fields.
type chatProvider struct {
	name      string
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	temp      float64
	together  bool
	client    *http.Client
}

type chatRequest struct {
	Model             string        `json:"model"`
	Messages          []chatMessage `json:"messages"`
	MaxTokens         int           `json:"max_tokens,omitempty"`
	Temperature       float64       `json:"temperature,omitempty"`
	TopP              float64       `json:"top_p,omitempty"`
	TopK              int           `json:"top_k,omitempty"`
	RepetitionPenalty float64       `json:"repetition_penalty,omitempty"`
	Stop              []string      `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *chatProvider) request(p Prompt) chatRequest {
	var msgs []chatMessage
	if p.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.User})

	req := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temp,
	}
	if c.together {
		req.TopP = 1
		req.TopK = 60
		req.RepetitionPenalty = 2
		req.Stop = []string{deepSeekStop}
	}
	return req
}

func (c *chatProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(c.request(p))
	if err != nil {
		return "", failed(c.name, "encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", failed(c.name, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", failed(c.name, "API error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", failed(c.name, "API %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", failed(c.name, "decoding response: %v", err)
	}
	if cr.Error != nil {
		return "", failed(c.name, "API error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", failed(c.name, "empty response")
	}
	text := strings.TrimSpace(strings.ReplaceAll(cr.Choices[0].Message.Content, deepSeekStop, ""))
	if text == "" {
		return "", failed(c.name, "empty completion")
	}
	return text, nil
}
