// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/tracked"
)

// DownloadCollector exports gauge families describing the tracked download
// queue. Values are computed from an in-memory snapshot on every scrape.
type DownloadCollector struct {
	tracker *tracked.Service

	downloadsByStateDesc  *prometheus.Desc
	downloadsByStatusDesc *prometheus.Desc
	downloadsTotalDesc    *prometheus.Desc
	untrackableDesc       *prometheus.Desc
}

func NewDownloadCollector(tracker *tracked.Service) *DownloadCollector {
	return &DownloadCollector{
		tracker: tracker,

		downloadsByStateDesc: prometheus.NewDesc(
			"grabarr_tracked_downloads",
			"Number of tracked downloads by lifecycle state",
			[]string{"state"},
			nil,
		),
		downloadsByStatusDesc: prometheus.NewDesc(
			"grabarr_tracked_downloads_by_status",
			"Number of tracked downloads by health status",
			[]string{"status"},
			nil,
		),
		downloadsTotalDesc: prometheus.NewDesc(
			"grabarr_tracked_downloads_total",
			"Total number of tracked downloads by protocol",
			[]string{"protocol"},
			nil,
		),
		untrackableDesc: prometheus.NewDesc(
			"grabarr_untrackable_downloads",
			"Number of client items that could not be correlated to a grabbed release",
			nil,
			nil,
		),
	}
}

func (c *DownloadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.downloadsByStateDesc
	ch <- c.downloadsByStatusDesc
	ch <- c.downloadsTotalDesc
	ch <- c.untrackableDesc
}

func (c *DownloadCollector) Collect(ch chan<- prometheus.Metric) {
	if c.tracker == nil {
		log.Debug().Msg("Tracker is nil, skipping metrics collection")
		return
	}

	downloads := c.tracker.All()

	byState := make(map[tracked.State]int)
	byStatus := make(map[tracked.Status]int)
	byProtocol := make(map[string]int)
	untrackable := 0

	for _, dl := range downloads {
		byState[dl.State]++
		byStatus[dl.Status]++
		byProtocol[string(dl.Protocol)]++
		if !dl.IsTrackable {
			untrackable++
		}
	}

	for _, state := range []tracked.State{
		tracked.StateDownloading,
		tracked.StateDownloadFailedPending,
		tracked.StateDownloadFailed,
		tracked.StateImportPending,
		tracked.StateImporting,
		tracked.StateImportFailed,
		tracked.StateImported,
		tracked.StateIgnored,
	} {
		ch <- prometheus.MustNewConstMetric(
			c.downloadsByStateDesc,
			prometheus.GaugeValue,
			float64(byState[state]),
			string(state),
		)
	}

	for _, status := range []tracked.Status{tracked.StatusOk, tracked.StatusWarning, tracked.StatusError} {
		ch <- prometheus.MustNewConstMetric(
			c.downloadsByStatusDesc,
			prometheus.GaugeValue,
			float64(byStatus[status]),
			status.String(),
		)
	}

	for protocol, count := range byProtocol {
		ch <- prometheus.MustNewConstMetric(
			c.downloadsTotalDesc,
			prometheus.GaugeValue,
			float64(count),
			protocol,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.untrackableDesc,
		prometheus.GaugeValue,
		float64(untrackable),
	)

	log.Debug().Int("downloads", len(downloads)).Msg("Collected tracked download metrics")
}
