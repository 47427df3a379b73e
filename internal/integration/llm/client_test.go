package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/integration/llm"
)

func TestNew(t *testing.T) {
	assert.Nil(t, llm.New(""), "an empty key disables the client")
	assert.NotNil(t, llm.New("sk-test"))
}

func TestComplete(t *testing.T) {
	t.Run("single turn prompt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

			var body struct {
				Model     string `json:"model"`
				MaxTokens int    `json:"max_tokens"`
				System    string `json:"system"`
				Messages  []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotEmpty(t, body.Model)
			assert.Greater(t, body.MaxTokens, 0)
			assert.Equal(t, "You write SEO reports", body.System)
			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "Summarize these metrics", body.Messages[0].Content)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"content": []map[string]string{
					{"type": "text", "text": "Your site "},
					{"type": "tool_use", "text": "ignored"},
					{"type": "text", "text": "needs faster pages."},
				},
			})
		}))
		defer server.Close()

		client := llm.NewWithBaseURL("sk-test", server.URL)
		text, err := client.Complete(context.Background(), "You write SEO reports", "Summarize these metrics")

		require.NoError(t, err)
		assert.Equal(t, "Your site needs faster pages.", text, "only text blocks are concatenated")
	})

	t.Run("empty response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"content": []interface{}{}})
		}))
		defer server.Close()

		client := llm.NewWithBaseURL("sk-test", server.URL)
		_, err := client.Complete(context.Background(), "", "prompt")

		assert.ErrorContains(t, err, "no text")
	})

	t.Run("api error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := llm.NewWithBaseURL("sk-test", server.URL)
		_, err := client.Complete(context.Background(), "", "prompt")

		assert.ErrorContains(t, err, "429")
	})
}
