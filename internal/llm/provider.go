// Package llm contains the outbound gateway to third-party inference
// providers. One attempt per request, bounded by the provider timeout; the
// chat layer degrades to a canned fallback on any error.
package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in the conversation context.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	SystemPrompt string
	History      []Turn
	Message      string
	MaxTokens    int
}

// Provider performs a single completion attempt against an inference
// backend. Implementations never retry: the caller's fallback policy
// handles failures.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}
