// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/tracked"
)

type Manager struct {
	registry          *prometheus.Registry
	downloadCollector *DownloadCollector
	evaluations       *prometheus.CounterVec
}

func NewManager(tracker *tracked.Service) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	downloadCollector := NewDownloadCollector(tracker)
	registry.MustRegister(downloadCollector)

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grabarr_release_evaluations_total",
		Help: "Release qualification decisions by outcome",
	}, []string{"decision"})
	registry.MustRegister(evaluations)

	log.Info().Msg("Metrics manager initialized with download collector")

	return &Manager{
		registry:          registry,
		downloadCollector: downloadCollector,
		evaluations:       evaluations,
	}
}

// ObserveEvaluation counts one qualification decision by outcome.
func (m *Manager) ObserveEvaluation(decision string) {
	m.evaluations.WithLabelValues(decision).Inc()
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
