package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	t.Run("builds chat message array", func(t *testing.T) {
		var got openai.ChatCompletionRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Role: "assistant", Content: " Hi! "}},
				},
			})
		}))
		defer srv.Close()

		p := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: time.Second})
		text, err := p.Complete(context.Background(), Request{
			SystemPrompt: "You are Virgil.",
			History: []Turn{
				{Role: RoleUser, Content: "hi"},
				{Role: RoleAssistant, Content: "hello"},
			},
			Message:   "how are you?",
			MaxTokens: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, "Hi!", text)

		require.Len(t, got.Messages, 4)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "You are Virgil.", got.Messages[0].Content)
		assert.Equal(t, "assistant", got.Messages[2].Role)
		assert.Equal(t, "user", got.Messages[3].Role)
		assert.Equal(t, "how are you?", got.Messages[3].Content)
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
		}))
		defer srv.Close()

		p := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: time.Second})
		_, err := p.Complete(context.Background(), Request{Message: "q"})
		assert.Error(t, err)
	})

	t.Run("upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: time.Second})
		_, err := p.Complete(context.Background(), Request{Message: "q"})
		assert.Error(t, err)
	})
}
