package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virgil-assistant/virgil/internal/config"
)

type Server struct {
	httpServer *http.Server
	onShutdown []func()
}

// New builds the HTTP server. onShutdown hooks run in order once a
// shutdown signal arrives, before the listener starts draining; they stop
// background work (the reminder poller) and close live WebSocket channels.
func New(cfg config.ServerConfig, handler http.Handler, onShutdown ...func()) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			// No write timeout: /guide can legitimately take as long as the
			// slowest LLM provider timeout allows. The outbound call's own
			// deadline is the effective bound on the request.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		onShutdown: onShutdown,
	}
}

func (s *Server) Start() error {
	// Channel for shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel for server errors
	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig)
	}

	for _, hook := range s.onShutdown {
		hook()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
