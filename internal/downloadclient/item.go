// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package downloadclient defines the contract the tracking engine consumes
// from external download clients, plus the qBittorrent-backed implementation
// and the polling loop that feeds client snapshots into the tracker. The
// engine only reads; it never initiates downloads.
package downloadclient

import (
	"context"

	"github.com/autobrr/grabarr/internal/models"
)

// ItemStatus is the client-reported state of one download item.
type ItemStatus string

const (
	ItemStatusQueued      ItemStatus = "queued"
	ItemStatusDownloading ItemStatus = "downloading"
	ItemStatusPaused      ItemStatus = "paused"
	ItemStatusCompleted   ItemStatus = "completed"
	ItemStatusFailed      ItemStatus = "failed"
)

// Item is a read-only snapshot of one download item as reported by a client.
// The tracking engine copies it in and never writes through it.
type Item struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   ItemStatus      `json:"status"`
	Protocol models.Protocol `json:"protocol"`
	// Progress is 0..1.
	Progress float64 `json:"progress"`
	// Message carries the client's own error or status text, when any.
	Message string `json:"message,omitempty"`
}

// Client is one configured download client. Implementations must be safe for
// concurrent use; the poller calls Items from its own goroutine.
type Client interface {
	// ID is the stable client identity used to key tracked downloads.
	ID() int
	Name() string
	Protocol() models.Protocol
	// Items returns a snapshot of every item the client currently holds.
	Items(ctx context.Context) ([]Item, error)
}
