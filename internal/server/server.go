// Package server exposes the ledger over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hance08/teller/internal/config"
	"github.com/hance08/teller/internal/service"
	"github.com/pterm/pterm"
)

// Ledger answers history queries.
type Ledger interface {
	List(ctx context.Context, q service.ListQuery) ([]service.Entry, error)
}

// StatusSource reports the reconciler's state.
type StatusSource interface {
	Status(ctx context.Context) (service.Status, error)
}

type Server struct {
	http *http.Server
	log  *pterm.Logger
}

func New(cfg config.ServerConfig, ledger Ledger, status StatusSource, metrics http.Handler, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	h := &handlers{ledger: ledger, status: status, log: logger}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           newRouter(h, metrics, newClientLimiter(cfg.RateLimit, cfg.RateBurst), logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP API listening", s.log.Args("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("HTTP API stopped")
	return nil
}
