// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package downloadclient

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"
)

// Tracker consumes client snapshots. Implemented by the tracked download
// service; declared here so this package stays a leaf below it.
type Tracker interface {
	Apply(clientID int, items []Item)
	MarkClientUnreachable(clientID int, cause error)
}

// Poller periodically snapshots every configured client and feeds the
// results into the tracker. Clients are polled concurrently; transient
// failures are retried before they surface as warnings.
type Poller struct {
	clients  []Client
	tracker  Tracker
	interval time.Duration
}

// NewPoller returns a poller over the given clients.
func NewPoller(tracker Tracker, interval time.Duration, clients ...Client) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		clients:  clients,
		tracker:  tracker,
		interval: interval,
	}
}

// Run polls until the context is cancelled. It performs one immediate poll
// so startup does not wait a full interval for the first snapshot.
func (p *Poller) Run(ctx context.Context) {
	log.Info().
		Int("clients", len(p.clients)).
		Dur("interval", p.interval).
		Msg("Starting download client poller")

	p.pollAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Download client poller stopped")
			return
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, client := range p.clients {
		p.poll(ctx, client)
	}
}

func (p *Poller) poll(ctx context.Context, client Client) {
	var items []Item

	err := retry.Do(
		func() error {
			var pollErr error
			items, pollErr = client.Items(ctx)
			return pollErr
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
	)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("client", client.Name()).Msg("Download client poll failed")
		p.tracker.MarkClientUnreachable(client.ID(), err)
		return
	}

	p.tracker.Apply(client.ID(), items)
}
