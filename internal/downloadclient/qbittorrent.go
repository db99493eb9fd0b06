// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package downloadclient

import (
	"context"
	"fmt"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/models"
)

// QBittorrent adapts a qBittorrent instance to the Client contract.
type QBittorrent struct {
	id     int
	name   string
	client *qbt.Client
}

// NewQBittorrent connects to a qBittorrent instance and verifies the login.
func NewQBittorrent(id int, name, host, username, password string) (*QBittorrent, error) {
	client := qbt.NewClient(qbt.Config{
		Host:     host,
		Username: username,
		Password: password,
		Timeout:  30,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.LoginCtx(ctx); err != nil {
		return nil, fmt.Errorf("connect to qBittorrent instance %q: %w", name, err)
	}

	log.Debug().Int("clientID", id).Str("host", host).Msg("Connected to qBittorrent")

	return &QBittorrent{id: id, name: name, client: client}, nil
}

func (q *QBittorrent) ID() int                   { return q.id }
func (q *QBittorrent) Name() string              { return q.name }
func (q *QBittorrent) Protocol() models.Protocol { return models.ProtocolTorrent }

// Items snapshots every torrent the instance holds.
func (q *QBittorrent) Items(ctx context.Context) ([]Item, error) {
	torrents, err := q.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}

	items := make([]Item, 0, len(torrents))
	for _, t := range torrents {
		items = append(items, Item{
			ID:       t.Hash,
			Title:    t.Name,
			Status:   mapTorrentState(t.State, t.Progress),
			Protocol: models.ProtocolTorrent,
			Progress: t.Progress,
		})
	}
	return items, nil
}

func mapTorrentState(state qbt.TorrentState, progress float64) ItemStatus {
	switch state {
	case qbt.TorrentStateError, qbt.TorrentStateMissingFiles:
		return ItemStatusFailed
	case qbt.TorrentStateUploading, qbt.TorrentStateStalledUp, qbt.TorrentStatePausedUp,
		qbt.TorrentStateQueuedUp, qbt.TorrentStateCheckingUp, qbt.TorrentStateForcedUp:
		return ItemStatusCompleted
	case qbt.TorrentStatePausedDl:
		return ItemStatusPaused
	case qbt.TorrentStateQueuedDl, qbt.TorrentStateAllocating, qbt.TorrentStateMetaDl,
		qbt.TorrentStateCheckingDl, qbt.TorrentStateCheckingResumeData:
		return ItemStatusQueued
	default:
		if progress >= 1 {
			return ItemStatusCompleted
		}
		return ItemStatusDownloading
	}
}
