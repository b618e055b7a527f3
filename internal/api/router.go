package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/virgil-assistant/virgil/internal/database"
	mw "github.com/virgil-assistant/virgil/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth
	IssueToken http.HandlerFunc

	// Chat
	Guide      http.HandlerFunc
	QuickGuide http.HandlerFunc
	Tones      http.HandlerFunc
	History    http.HandlerFunc
	DeleteUser http.HandlerFunc

	// Reminders
	ScheduleReminder http.HandlerFunc
	PullReminders    http.HandlerFunc

	// Utilities
	Calculate http.HandlerFunc
	Translate http.HandlerFunc

	// Notifications
	NotifyWS http.HandlerFunc

	// IdentityMiddleware resolves the caller's identity (bearer token, or
	// the legacy header when enabled) without rejecting anonymous requests.
	IdentityMiddleware func(http.Handler) http.Handler
	// RequireAuth rejects requests that carry no resolved identity.
	RequireAuth func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"name":    "Virgil AI Assistant API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"/health":      "Health check",
				"/tones":       "Available conversation tones",
				"/guide":       "Main conversation endpoint with context",
				"/quick-guide": "Quick response endpoint",
			},
		})
	})

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks the database
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "ok", "database": "healthy"}
		status := http.StatusOK
		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["status"] = "degraded"
			health["database"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, health)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Token issuance (public) — optionally rate-limited
	r.Group(func(r chi.Router) {
		if cfg.AuthRateLimiter != nil {
			r.Use(cfg.AuthRateLimiter)
		}
		r.Post("/auth/token", h.IssueToken)
	})

	r.Get("/tones", h.Tones)
	r.Post("/calculate", h.Calculate)
	r.Post("/translate", h.Translate)

	// Identity-aware routes: anonymous callers are allowed through and
	// resolved to "guest"-style identities where the handler permits it.
	r.Group(func(r chi.Router) {
		r.Use(h.IdentityMiddleware)

		r.Post("/guide", h.Guide)
		r.Post("/quick-guide", h.QuickGuide)
		r.Post("/reminder", h.ScheduleReminder)
		r.Get("/reminders", h.PullReminders)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/history", h.History)
			r.Delete("/user-data", h.DeleteUser)
		})
	})

	// WebSocket notifications: the handler does its own credential check
	// against the path user id before upgrading.
	r.Get("/ws/notify/{user_id}", h.NotifyWS)

	return r
}
