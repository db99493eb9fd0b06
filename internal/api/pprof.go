// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// mountPprof exposes the runtime profiler under /debug/pprof. Only mounted
// when pprofEnabled is set; the endpoints leak internals and must never be
// reachable on a public deployment.
func mountPprof(r chi.Router) {
	log.Warn().Msg("pprof endpoints enabled at /debug/pprof")

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Post("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/allocs", handlerFor("allocs"))
		r.Get("/block", handlerFor("block"))
		r.Get("/goroutine", handlerFor("goroutine"))
		r.Get("/heap", handlerFor("heap"))
		r.Get("/mutex", handlerFor("mutex"))
		r.Get("/threadcreate", handlerFor("threadcreate"))
	})
}

func handlerFor(name string) http.HandlerFunc {
	return pprof.Handler(name).ServeHTTP
}
