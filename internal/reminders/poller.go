package reminders

import (
	"context"
	"log/slog"
	"time"

	"github.com/virgil-assistant/virgil/internal/metrics"
)

// Sender is the slice of the notification registry the poller needs.
type Sender interface {
	IsConnected(userID string) bool
	SendTo(userID string, payload any) error
}

// Poller is the background delivery loop: every tick it looks for due
// reminders and pushes each one whose owner has a live WebSocket.
type Poller struct {
	repo     Repository
	sender   Sender
	interval time.Duration
}

func NewPoller(repo Repository, sender Sender, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		repo:     repo,
		sender:   sender,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Tick failures are logged and
// swallowed so one bad pass never kills the loop.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("reminder poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("reminder tick panicked", "panic", rec)
		}
	}()

	due, err := p.repo.ListDue(ctx)
	if err != nil {
		slog.Error("listing due reminders", "error", err)
		return
	}

	for _, rem := range due {
		if !p.sender.IsConnected(rem.UserID) {
			continue
		}
		p.deliver(ctx, rem)
	}
}

// deliver claims the reminder before sending, so the pull endpoint and
// the poller can never both deliver the same row. A failed push reverts
// the claim and the reminder stays pending.
func (p *Poller) deliver(ctx context.Context, rem Reminder) {
	won, err := p.repo.Claim(ctx, rem.ID)
	if err != nil {
		slog.Error("claiming reminder", "reminder_id", rem.ID, "error", err)
		return
	}
	if !won {
		return
	}

	payload := Notification{
		Type:     "reminder",
		ID:       rem.ID,
		Message:  rem.Message,
		RemindAt: rem.RemindAt,
	}
	if err := p.sender.SendTo(rem.UserID, payload); err != nil {
		slog.Warn("pushing reminder failed, reverting claim",
			"reminder_id", rem.ID, "user_id", rem.UserID, "error", err)
		if err := p.repo.Revert(ctx, rem.ID); err != nil {
			slog.Error("reverting reminder claim", "reminder_id", rem.ID, "error", err)
		}
		return
	}

	metrics.RemindersDeliveredTotal.WithLabelValues("push").Inc()
	slog.Info("reminder delivered", "reminder_id", rem.ID, "user_id", rem.UserID)
}
