package azure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() Option {
	return WithRetryOptions(RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2})
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"id": "cmpl-1",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	return string(b)
}

func TestCompleteJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
		}
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
		}

		w.Write([]byte(completionBody(`{"insights":["ok"]}`)))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL+"/", "secret", "2024-06-01", "gpt-4o", 0, fastRetry())
	content, err := client.CompleteJSON(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"insights":["ok"]}`, content)
}

func TestCompleteJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"busy"}}`))
			return
		}
		w.Write([]byte(completionBody(`{}`)))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "secret", "v", "d", 0, fastRetry())
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCompleteJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad prompt"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "secret", "v", "d", 0, fastRetry())
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "bad prompt")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteJSON_GivesUpAfterMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "secret", "v", "d", 0, fastRetry())
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxRetries))
}

func TestCompleteJSON_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "secret", "v", "d", 0, fastRetry())
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestChatCompletion_NotConfigured(t *testing.T) {
	client := NewOpenAIClient("", "", "v", "d", 30)
	assert.False(t, client.IsConfigured())
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
