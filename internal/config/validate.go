package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error. Problems that are
// acceptable in demo mode are downgraded to warnings while DemoMode is on.
func (c *Config) Validate() error {
	var errs []string

	// JWT secret
	if len(c.JWT.Secret) < 32 {
		msg := "JWT_SECRET should be at least 32 characters"
		if c.Auth.DemoMode {
			slog.Warn(msg + " (tolerated in demo mode)")
		} else {
			errs = append(errs, msg)
		}
	}

	// DB password
	if c.DB.Password == "" {
		if c.Auth.DemoMode {
			slog.Warn("DB_PASSWORD is empty (tolerated in demo mode)")
		} else {
			errs = append(errs, "DB_PASSWORD is required")
		}
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// LLM provider
	switch c.LLM.Provider {
	case "huggingface", "openai":
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be huggingface or openai, got %q", c.LLM.Provider))
	}

	if c.Chat.MaxHistoryTurns < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_MAX_HISTORY_TURNS must be positive, got %d", c.Chat.MaxHistoryTurns))
	}
	if c.Reminders.PollInterval <= 0 {
		errs = append(errs, "REMINDERS_POLL_INTERVAL must be positive")
	}

	// Non-production escape hatches: warn only
	if c.Auth.DemoMode {
		slog.Warn("AUTH_DEMO_MODE is on — /auth/token accepts any non-empty credentials")
	}
	if c.Auth.AllowLegacyIdentity {
		slog.Warn("AUTH_ALLOW_LEGACY_IDENTITY is on — unverified X-User-Id headers are trusted")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
