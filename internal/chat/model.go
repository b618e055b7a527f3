package chat

import (
	"time"

	"github.com/virgil-assistant/virgil/internal/llm"
)

// Turn aliases the gateway's message type; the history buffer and the
// prompt context share one representation.
type Turn = llm.Turn

// Conversation is one persisted exchange: the user message and the reply
// it produced. Rows are immutable once written; they are only ever deleted
// in bulk by a user-data erasure request.
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type GuideRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id"`
	Tone      string `json:"tone"`
}

type QuickGuideRequest struct {
	Message string `json:"message" validate:"required"`
	Tone    string `json:"tone"`
}

type GuideResponse struct {
	Reply        string  `json:"reply"`
	SessionID    string  `json:"session_id"`
	ResponseTime float64 `json:"response_time"`
}
