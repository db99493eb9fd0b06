// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package downloadclient

import (
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
)

func TestMapTorrentState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    qbt.TorrentState
		progress float64
		want     ItemStatus
	}{
		{qbt.TorrentStateError, 0.5, ItemStatusFailed},
		{qbt.TorrentStateMissingFiles, 1, ItemStatusFailed},
		{qbt.TorrentStateUploading, 1, ItemStatusCompleted},
		{qbt.TorrentStateStalledUp, 1, ItemStatusCompleted},
		{qbt.TorrentStatePausedUp, 1, ItemStatusCompleted},
		{qbt.TorrentStateQueuedUp, 1, ItemStatusCompleted},
		{qbt.TorrentStateCheckingUp, 1, ItemStatusCompleted},
		{qbt.TorrentStateForcedUp, 1, ItemStatusCompleted},
		{qbt.TorrentStatePausedDl, 0.4, ItemStatusPaused},
		{qbt.TorrentStateQueuedDl, 0, ItemStatusQueued},
		{qbt.TorrentStateAllocating, 0, ItemStatusQueued},
		{qbt.TorrentStateMetaDl, 0, ItemStatusQueued},
		{qbt.TorrentStateCheckingDl, 0.3, ItemStatusQueued},
		{qbt.TorrentStateCheckingResumeData, 0.3, ItemStatusQueued},
		{qbt.TorrentStateDownloading, 0.5, ItemStatusDownloading},
		{qbt.TorrentStateStalledDl, 0.5, ItemStatusDownloading},
		// Unknown states fall back on progress.
		{qbt.TorrentState("someday"), 1, ItemStatusCompleted},
		{qbt.TorrentState("someday"), 0.2, ItemStatusDownloading},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mapTorrentState(tt.state, tt.progress))
		})
	}
}
