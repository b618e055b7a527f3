package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/virgil-assistant/virgil/internal/llm"
	"github.com/virgil-assistant/virgil/internal/metrics"
)

type Service struct {
	provider  llm.Provider
	history   *History
	repo      Repository
	maxTurns  int
	maxTokens int
}

func NewService(provider llm.Provider, history *History, repo Repository, maxTurns, maxTokens int) *Service {
	return &Service{
		provider:  provider,
		history:   history,
		repo:      repo,
		maxTurns:  maxTurns,
		maxTokens: maxTokens,
	}
}

// Guide produces a contextual reply for the session. The inference call
// gets the buffered history; on a buffer miss the session is re-seeded
// from the durable log. Inference failures degrade to a canned fallback —
// the caller always gets a reply.
func (s *Service) Guide(ctx context.Context, req GuideRequest) GuideResponse {
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	prior := s.history.Get(sessionID, s.maxTurns*2)
	if len(prior) == 0 {
		if turns, err := s.repo.RecentTurns(ctx, sessionID, s.maxTurns); err != nil {
			slog.Warn("seeding history from store", "session_id", sessionID, "error", err)
		} else if len(turns) > 0 {
			s.history.Seed(sessionID, turns)
			prior = s.history.Get(sessionID, s.maxTurns*2)
		}
	}

	reply := s.complete(ctx, prior, req.Message, req.Tone)

	s.history.Append(sessionID,
		Turn{Role: llm.RoleUser, Content: req.Message},
		Turn{Role: llm.RoleAssistant, Content: reply},
	)

	if err := s.repo.SaveTurn(ctx, sessionID, req.Message, reply); err != nil {
		slog.Error("persisting conversation turn", "session_id", sessionID, "error", err)
	}

	return GuideResponse{
		Reply:        reply,
		SessionID:    sessionID,
		ResponseTime: time.Since(start).Seconds(),
	}
}

// QuickGuide produces a one-off reply: no history context, nothing persisted.
func (s *Service) QuickGuide(ctx context.Context, req QuickGuideRequest) GuideResponse {
	start := time.Now()
	reply := s.complete(ctx, nil, req.Message, req.Tone)
	return GuideResponse{
		Reply:        reply,
		SessionID:    "quick-response",
		ResponseTime: time.Since(start).Seconds(),
	}
}

func (s *Service) complete(ctx context.Context, history []Turn, message, tone string) string {
	reply, err := s.provider.Complete(ctx, llm.Request{
		SystemPrompt: SystemPrompt(tone),
		History:      history,
		Message:      message,
		MaxTokens:    s.maxTokens,
	})
	if err != nil {
		slog.Warn("inference failed, serving fallback", "provider", s.provider.Name(), "error", err)
		metrics.LLMRequestsTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		metrics.LLMFallbacksTotal.Inc()
		return Fallback(message, tone)
	}
	metrics.LLMRequestsTotal.WithLabelValues(s.provider.Name(), "ok").Inc()
	return reply
}

// History returns the caller's durable conversation log.
func (s *Service) History(ctx context.Context, userID string) ([]Conversation, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Erase deletes the user's durable turns and drops the matching session
// buffer entry.
func (s *Service) Erase(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.history.Forget(userID)
	return nil
}
