// Package groupme provides the reply poster for the GroupMe bot API.
package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robinsondorm/robinai/ports"
)

// DefaultBaseURL is the public GroupMe API endpoint.
const DefaultBaseURL = "https://api.groupme.com/v3"

// DeliveryError represents a failed message post.
type DeliveryError struct {
	StatusCode int // 0 for transport errors and timeouts
	Message    string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("groupme delivery: %s", e.Message)
	}
	return fmt.Sprintf("groupme delivery %d: %s", e.StatusCode, e.Message)
}

// Config configures the reply poster.
type Config struct {
	BotID   string
	BaseURL string // Defaults to DefaultBaseURL
	Timeout time.Duration
}

// Client posts messages to a group via the GroupMe bot API.
// Bots can only post to the group they are registered in, so the bot ID
// alone addresses the destination.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botID      string
}

// NewClient creates a new reply poster.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		botID:      cfg.BotID,
	}
}

type postRequest struct {
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
}

// Post sends a message to the group.
func (c *Client) Post(ctx context.Context, text string) error {
	data, err := json.Marshal(postRequest{BotID: c.botID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bots/post", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return nil
}

// Ensure interface compliance.
var _ ports.Messenger = (*Client)(nil)
