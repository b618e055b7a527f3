package reminders

import "time"

// Reminder is a scheduled one-shot notification. The delivered flag flips
// true exactly once, either when the owner pulls due reminders or when the
// poller pushes one over a live WebSocket.
type Reminder struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	RemindAt  time.Time `json:"remind_at"`
	Delivered bool      `json:"delivered"`
}

// Notification is the payload pushed over WebSocket when the poller
// delivers a due reminder.
type Notification struct {
	Type     string    `json:"type"`
	ID       int64     `json:"id"`
	Message  string    `json:"message"`
	RemindAt time.Time `json:"remind_at"`
}

type ScheduleRequest struct {
	Message  string `json:"message" validate:"required"`
	RemindAt string `json:"remind_at" validate:"required"`
}
