package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
)

func TestOpenAICompat_WithUsage(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello!"}},
			},
			"usage": map[string]any{
				"prompt_tokens":     42,
				"completion_tokens": 7,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAICompat("test-key", server.URL, "test-model", 5*time.Second)
	result, err := client.ChatCompletion(context.Background(), []conversation.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "Hello!", result.Content)
	require.Equal(t, 42, result.InputTokens)
	require.Equal(t, 7, result.OutputTokens)
	require.Equal(t, "Bearer test-key", gotAuth)
}

func TestOpenAICompat_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
	}))
	defer server.Close()

	client := NewOpenAICompat("", server.URL, "test-model", 5*time.Second)
	result, err := client.ChatCompletion(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "(empty model response)", result.Content)
}

func TestOpenAICompat_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAICompat("k", server.URL, "test-model", 5*time.Second)
	_, err := client.ChatCompletion(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAICompat_ContextCancelled(t *testing.T) {
	unblock := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the POST body so the server notices the client abort.
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-unblock:
		}
	}))
	t.Cleanup(func() {
		close(unblock)
		server.Close()
	})

	client := NewOpenAICompat("k", server.URL, "test-model", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ChatCompletion(ctx, nil)
	require.Error(t, err)
}
