package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/virgil-assistant/virgil/internal/api"
	"github.com/virgil-assistant/virgil/internal/auth"
	"github.com/virgil-assistant/virgil/internal/calc"
	"github.com/virgil-assistant/virgil/internal/chat"
	"github.com/virgil-assistant/virgil/internal/config"
	"github.com/virgil-assistant/virgil/internal/database"
	"github.com/virgil-assistant/virgil/internal/llm"
	"github.com/virgil-assistant/virgil/internal/middleware"
	"github.com/virgil-assistant/virgil/internal/notify"
	iredis "github.com/virgil-assistant/virgil/internal/redis"
	"github.com/virgil-assistant/virgil/internal/reminders"
	"github.com/virgil-assistant/virgil/internal/server"
	"github.com/virgil-assistant/virgil/internal/translate"
	"github.com/virgil-assistant/virgil/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), migrations.FS); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Auth
	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	var verifier auth.CredentialVerifier = auth.DemoVerifier{}
	if !cfg.Auth.DemoMode {
		verifier = auth.NewStaticVerifier(cfg.Auth.Users)
	}
	authHandler := auth.NewHandler(issuer, verifier)

	// Chat
	provider := newProvider(cfg.LLM)
	chatRepo := chat.NewRepository(pool)
	chatSvc := chat.NewService(
		provider,
		chat.NewHistory(cfg.Chat.MaxHistoryTurns),
		chatRepo,
		cfg.Chat.MaxHistoryTurns,
		cfg.LLM.MaxTokens,
	)

	// Reminders + notifications
	reminderRepo := reminders.NewRepository(pool)
	reminderHandler := reminders.NewHandler(reminderRepo)
	registry := notify.NewRegistry()
	notifyHandler := notify.NewHandler(registry, issuer, cfg.Auth.AllowLegacyIdentity)

	chatHandler := chat.NewHandler(chatSvc, reminderRepo)

	// Translation
	translateHandler := translate.NewHandler(
		translate.NewClient(cfg.Translate.URL, cfg.Translate.APIKey, cfg.Translate.Timeout))

	// Redis-backed rate limiting on token issuance
	var authLimiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		redisClient, err := iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		authLimiter = middleware.NewRateLimiter(
			redisClient, cfg.RateLimit.AuthMaxReqs, cfg.RateLimit.AuthWindowSec).Middleware
	}

	// Background reminder delivery
	poller := reminders.NewPoller(reminderRepo, registry, cfg.Reminders.PollInterval)
	pollerCtx, stopPoller := context.WithCancel(ctx)
	go poller.Run(pollerCtx)

	// Router
	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter,
	}, api.HandlerSet{
		IssueToken: authHandler.IssueToken,

		Guide:      chatHandler.Guide,
		QuickGuide: chatHandler.QuickGuide,
		Tones:      chatHandler.Tones,
		History:    chatHandler.History,
		DeleteUser: chatHandler.DeleteUser,

		ScheduleReminder: reminderHandler.Schedule,
		PullReminders:    reminderHandler.Pull,

		Calculate: calc.Handler,
		Translate: translateHandler.Translate,

		NotifyWS: notifyHandler.Serve,

		IdentityMiddleware: auth.IdentityMiddleware(issuer, cfg.Auth.AllowLegacyIdentity),
		RequireAuth:        auth.RequireAuth,
	})

	// Start server
	srv := server.New(cfg.Server, router, stopPoller, registry.CloseAll)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newProvider(cfg config.LLMConfig) llm.Provider {
	if cfg.Provider == "openai" {
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.OpenAITimeout,
		})
	}
	return llm.NewHuggingFace(cfg.HFURL, cfg.HFKey, cfg.HFTimeout)
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
