package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robinsondorm/robinai/adapters/openai"
)

func TestComplete_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  Quiet hours start at 10pm.  "}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{
		APIKey:       "sk-test",
		BaseURL:      server.URL,
		Model:        "gpt-4o",
		SystemPrompt: "You are Robin AI.",
		MaxTokens:    500,
		Temperature:  0.7,
	})

	result, err := client.Complete(context.Background(), "when are quiet hours?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Text != "Quiet hours start at 10pm." {
		t.Errorf("Text = %q, want trimmed reply", result.Text)
	}
	if result.TotalTokens != 150 || result.PromptTokens != 120 || result.CompletionTokens != 30 {
		t.Errorf("token counts = %+v, want upstream-reported values", result)
	}

	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want system + user", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "You are Robin AI." {
		t.Errorf("first message = %v, want persona system prompt", first)
	}
}

func TestComplete_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})

	_, err := client.Complete(context.Background(), "hi")
	var ue *openai.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", ue.StatusCode)
	}
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{
		APIKey:  "k",
		BaseURL: server.URL,
		Model:   "gpt-4o",
		Timeout: 20 * time.Millisecond,
	})

	_, err := client.Complete(context.Background(), "hi")
	var ue *openai.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UpstreamError for timeout", err)
	}
	if ue.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport error", ue.StatusCode)
	}
}

func TestComplete_MissingUsageBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "hello"}}]}`))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})

	result, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0 when upstream omits usage", result.TotalTokens)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})

	_, err := client.Complete(context.Background(), "hi")
	var ue *openai.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UpstreamError for empty choices", err)
	}
}

func TestUpdatePrompt(t *testing.T) {
	var sentPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		sentPrompt = body.Messages[0].Content
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {"total_tokens": 1}}`))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o", SystemPrompt: "old"})
	client.UpdatePrompt("new persona", 400, 0.5)

	if _, err := client.Complete(context.Background(), "hi"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if sentPrompt != "new persona" {
		t.Errorf("system prompt = %q, want updated persona", sentPrompt)
	}
}
