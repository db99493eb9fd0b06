// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api assembles the HTTP surface: routing, middleware, and server
// lifecycle. Handlers live in the handlers subpackage.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/api/handlers"
	"github.com/autobrr/grabarr/internal/database"
	"github.com/autobrr/grabarr/internal/decision"
	"github.com/autobrr/grabarr/internal/domain"
	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/formats"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/profiles"
	"github.com/autobrr/grabarr/internal/tracked"
	"github.com/autobrr/grabarr/pkg/releases"
)

// Dependencies carries everything the router needs. Fields left nil simply
// leave their routes unmounted, which keeps tests small.
type Dependencies struct {
	Config *domain.Config

	DB             *database.DB
	Bus            *events.Bus
	ProfileService *profiles.Service
	DelayProfiles  *models.DelayProfileStore
	CustomFormats  *models.CustomFormatStore
	Detector       *formats.ExprDetector
	Evaluator      *decision.Evaluator
	Tracker        *tracked.Service
	Parser         *releases.Parser
	// Evaluations counts qualification decisions; nil when metrics are off.
	Evaluations handlers.EvaluationObserver
}

// Server is the main HTTP server.
type Server struct {
	deps *Dependencies
	http *http.Server
}

// NewServer builds the server with its routes. Call Serve to start it.
func NewServer(deps *Dependencies) *Server {
	s := &Server{deps: deps}

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", deps.Config.Host, deps.Config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler builds the chi router. Exposed separately so tests can drive the
// routes without binding a socket.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		if s.deps.DB != nil {
			health := handlers.NewHealthHandler(s.deps.DB)
			r.Get("/health/liveness", health.Liveness)
			r.Get("/health/readiness", health.Readiness)
		}

		r.Get("/version", handlers.Version)

		if s.deps.ProfileService != nil {
			h := handlers.NewQualityProfileHandler(s.deps.ProfileService)
			r.Route("/quality-profiles", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Get("/{id}", h.Get)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		}

		if s.deps.DelayProfiles != nil {
			h := handlers.NewDelayProfileHandler(s.deps.DelayProfiles)
			r.Route("/delay-profiles", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Get("/{id}", h.Get)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		}

		if s.deps.CustomFormats != nil && s.deps.Detector != nil && s.deps.Bus != nil {
			h := handlers.NewCustomFormatHandler(s.deps.CustomFormats, s.deps.Detector, s.deps.Bus)
			r.Route("/custom-formats", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Get("/{id}", h.Get)
				r.Delete("/{id}", h.Delete)
			})
		}

		if s.deps.Tracker != nil {
			h := handlers.NewQueueHandler(s.deps.Tracker)
			r.Route("/queue", func(r chi.Router) {
				r.Get("/", h.List)
				r.Get("/{key}", h.Get)
				r.Post("/{key}/ignore", h.Ignore)
			})
		}

		if s.deps.Evaluator != nil && s.deps.ProfileService != nil && s.deps.Parser != nil {
			h := handlers.NewEvaluateHandler(s.deps.Evaluator, s.deps.ProfileService, s.deps.Parser, s.deps.Evaluations)
			r.Post("/release/evaluate", h.Evaluate)
			r.Post("/release/evaluate/batch", h.EvaluateBatch)
		}
	})

	if s.deps.Config.PprofEnabled {
		mountPprof(r)
	}

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("Starting API server")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down API server")
	return s.http.Shutdown(shutdownCtx)
}
