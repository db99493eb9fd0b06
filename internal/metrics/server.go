// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes the Prometheus scrape endpoint on its own listener, so the
// metrics port can be firewalled independently of the API.
type Server struct {
	manager *Manager
	http    *http.Server
}

func NewServer(manager *Manager, host string, port int) *Server {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.HandlerFor(manager.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP)

	return &Server{
		manager: manager,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Serve runs the metrics server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("Starting metrics server")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
