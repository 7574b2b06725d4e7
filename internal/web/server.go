// Package web serves the recorded probe history as a read-only JSON API.
// It only runs under the serve command; the ping loop never listens.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"streaming-ping/internal/database"
	"streaming-ping/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server handles web requests
type Server struct {
	db     *database.DB
	addr   string
	logger logger.Logger
	now    func() time.Time
}

// New creates a new web server
func New(db *database.DB, addr string, log logger.Logger) *Server {
	return &Server{
		db:     db,
		addr:   addr,
		logger: log.WithComponent("web"),
		now:    time.Now,
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/activity", s.handleActivity)
	mux.HandleFunc("GET /api/outages", s.handleOutages)

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Web server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Web server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
