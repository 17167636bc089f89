// Package openai provides the completion client for the chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robinsondorm/robinai/ports"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// UpstreamError represents a failed or timed-out completion call.
type UpstreamError struct {
	StatusCode int // 0 for transport errors and timeouts
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("completion upstream: %s", e.Message)
	}
	return fmt.Sprintf("completion upstream %d: %s", e.StatusCode, e.Message)
}

// Config configures the completion client.
type Config struct {
	APIKey       string
	BaseURL      string // Defaults to DefaultBaseURL
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// Client calls the chat completions API with a fixed persona prompt.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string

	mu           sync.RWMutex
	systemPrompt string
	maxTokens    int
	temperature  float64
}

// NewClient creates a new completion client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
	}
}

// UpdatePrompt replaces the persona prompt and generation settings.
// Safe to call while handling requests; used by config hot reload.
func (c *Client) UpdatePrompt(systemPrompt string, maxTokens int, temperature float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = systemPrompt
	c.maxTokens = maxTokens
	c.temperature = temperature
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the persona prompt plus the user text upstream.
// Token counts come from the response usage block; a missing block yields
// zeros rather than a local estimate.
func (c *Client) Complete(ctx context.Context, userText string) (ports.Completion, error) {
	c.mu.RLock()
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: userText},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	c.mu.RUnlock()

	data, err := json.Marshal(reqBody)
	if err != nil {
		return ports.Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return ports.Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Completion{}, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ports.Completion{}, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.Completion{}, &UpstreamError{Message: fmt.Sprintf("decode response: %v", err)}
	}

	if len(parsed.Choices) == 0 {
		return ports.Completion{}, &UpstreamError{Message: "response contained no choices"}
	}

	return ports.Completion{
		Text:             strings.TrimSpace(parsed.Choices[0].Message.Content),
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}, nil
}

// Ensure interface compliance.
var _ ports.Completer = (*Client)(nil)
