package groupme_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robinsondorm/robinai/adapters/groupme"
)

func TestPost_Success(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bots/post" {
			t.Errorf("path = %q, want /bots/post", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := groupme.NewClient(groupme.Config{BotID: "bot123", BaseURL: server.URL})

	if err := client.Post(context.Background(), "hello group"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if got["bot_id"] != "bot123" {
		t.Errorf("bot_id = %q, want bot123", got["bot_id"])
	}
	if got["text"] != "hello group" {
		t.Errorf("text = %q, want hello group", got["text"])
	}
}

func TestPost_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad bot id", http.StatusBadRequest)
	}))
	defer server.Close()

	client := groupme.NewClient(groupme.Config{BotID: "nope", BaseURL: server.URL})

	err := client.Post(context.Background(), "hi")
	var de *groupme.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DeliveryError", err)
	}
	if de.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", de.StatusCode)
	}
}

func TestPost_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := groupme.NewClient(groupme.Config{
		BotID:   "bot123",
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})

	err := client.Post(context.Background(), "hi")
	var de *groupme.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DeliveryError for timeout", err)
	}
	if de.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport error", de.StatusCode)
	}
}
