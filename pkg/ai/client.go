// Package ai talks to an OpenAI-compatible chat-completions endpoint and
// maps its failure modes onto the core error taxonomy.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starORAIT/HRAgent/pkg/config"
	"github.com/starORAIT/HRAgent/pkg/core"
)

// Client implements core.Classifier and core.Scorer backed by an
// OpenAI-compatible chat-completions API.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	positions  []string
	httpClient *http.Client
}

var (
	_ core.Classifier = (*Client)(nil)
	_ core.Scorer     = (*Client)(nil)
)

// NewClient builds a client from configuration. Per-request deadlines come
// from the caller's context, so the underlying http.Client carries none.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete posts one system+user exchange and returns the first choice.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("ai client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", core.Transient(core.KindConnectivity, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", core.Malformed(fmt.Errorf("decode chat response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", core.Malformed(fmt.Errorf("chat response has no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

func classifyStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(detail)))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.Transient(core.KindRateLimit, err)
	case resp.StatusCode >= http.StatusInternalServerError:
		return core.Transient(core.KindGateway, err)
	default:
		return err
	}
}

// extractJSON tolerates code fences and surrounding prose around the JSON
// object the model was asked to emit.
func extractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return content[start : end+1], nil
}
