// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/grabarr/internal/downloadclient"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/tracked"
)

func newTracker(t *testing.T) *tracked.Service {
	t.Helper()

	tracker := tracked.NewService(tracked.Config{MaxDownloadRetries: 3})

	_, err := tracker.Track(1, downloadclient.Item{
		ID:       "abc",
		Title:    "Artist - Album (2024) [FLAC]",
		Status:   downloadclient.ItemStatusDownloading,
		Protocol: models.ProtocolTorrent,
	}, &models.Release{
		Title:    "Artist - Album (2024) [FLAC]",
		Indexer:  "indexer1",
		GUID:     "guid-1",
		Protocol: models.ProtocolTorrent,
	}, "indexer1")
	require.NoError(t, err)

	return tracker
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	manager := NewManager(newTracker(t))
	require.NotNil(t, manager)
	require.NotNil(t, manager.GetRegistry())
}

func TestDownloadCollector(t *testing.T) {
	t.Parallel()

	manager := NewManager(newTracker(t))

	families, err := manager.GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}

	assert.True(t, names["grabarr_tracked_downloads"])
	assert.True(t, names["grabarr_tracked_downloads_by_status"])
	assert.True(t, names["grabarr_tracked_downloads_total"])
	assert.True(t, names["grabarr_untrackable_downloads"])
}

func TestObserveEvaluation(t *testing.T) {
	t.Parallel()

	manager := NewManager(newTracker(t))
	manager.ObserveEvaluation("grabNow")
	manager.ObserveEvaluation("grabNow")
	manager.ObserveEvaluation("rejected")

	families, err := manager.GetRegistry().Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "grabarr_release_evaluations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "decision" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}

	assert.Equal(t, 2.0, counts["grabNow"])
	assert.Equal(t, 1.0, counts["rejected"])
}

func TestDownloadCollectorCountsByState(t *testing.T) {
	t.Parallel()

	tracker := newTracker(t)
	manager := NewManager(tracker)

	families, err := manager.GetRegistry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "grabarr_tracked_downloads" {
			continue
		}
		for _, metric := range family.GetMetric() {
			var state string
			for _, label := range metric.GetLabel() {
				if label.GetName() == "state" {
					state = label.GetValue()
				}
			}
			if state == string(tracked.StateDownloading) {
				assert.Equal(t, 1.0, metric.GetGauge().GetValue())
			} else {
				assert.Equal(t, 0.0, metric.GetGauge().GetValue())
			}
		}
		return
	}
	t.Fatal("grabarr_tracked_downloads family not found")
}
