package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"recipeimport/internal/infrastructure/translate"
	"recipeimport/internal/usecase"
)

// Server exposes the import workflow and translation engine over a JSON
// HTTP API.
type Server struct {
	workflow *usecase.Workflow
	engine   *translate.Engine
	logger   *slog.Logger
	http     *http.Server
}

// New wires routes and the underlying http.Server.
func New(addr string, workflow *usecase.Workflow, engine *translate.Engine, logger *slog.Logger) *Server {
	s := &Server{
		workflow: workflow,
		engine:   engine,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/import/sessions", s.handleSessions)
	mux.HandleFunc("/api/import/sessions/", s.handleSessionDetail)
	mux.HandleFunc("/api/translate", s.handleTranslate)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
