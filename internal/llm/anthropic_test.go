package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AnthropicClient, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient(AnthropicConfig{
		APIKey:    "test-key",
		Model:     "claude-test",
		MaxTokens: 256,
		BaseURL:   srv.URL + "/",
	}, nil)
	return client, &calls
}

func TestAnthropicClient_Generate(t *testing.T) {
	var gotBody map[string]any
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [
				{"type": "text", "text": "CREATE TABLE dw_users (\n  id INTEGER\n);"},
				{"type": "text", "text": "\nINSERT INTO dw_users SELECT id FROM users;"}
			],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 34}
		}`))
	})

	out, err := client.Generate(context.Background(), "Table: users\n- id: integer\n")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE dw_users (\n  id INTEGER\n);\nINSERT INTO dw_users SELECT id FROM users;", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	assert.Equal(t, "claude-test", gotBody["model"])
	assert.EqualValues(t, 256, gotBody["max_tokens"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
}

func TestAnthropicClient_GenerateProviderErrorIsNotRetried(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"upstream exploded"}}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API error")
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAnthropicClient_GenerateEmptyCompletionPassesThrough(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_02",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [],
			"stop_reason": "max_tokens",
			"usage": {"input_tokens": 1, "output_tokens": 0}
		}`))
	})

	got, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestAnthropicClient_MissingAPIKey(t *testing.T) {
	client := NewAnthropicClient(AnthropicConfig{Model: "claude-test", MaxTokens: 16}, nil)

	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
