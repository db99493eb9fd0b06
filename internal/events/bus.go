// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package events provides the in-process event dispatch the profile services
// react to. Handlers are explicit subscriptions, invoked synchronously in
// subscription order; publishing is serialized so a handler never observes a
// half-applied administrative change.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/models"
)

// Event is a marker for the closed set of event types below.
type Event interface{ eventName() string }

// ApplicationStarted is published once after migrations complete.
type ApplicationStarted struct{}

func (ApplicationStarted) eventName() string { return "ApplicationStarted" }

// CustomFormatAdded is published after a new custom format is persisted.
type CustomFormatAdded struct {
	Format *models.CustomFormat
}

func (CustomFormatAdded) eventName() string { return "CustomFormatAdded" }

// CustomFormatDeleted is published after a custom format is removed.
type CustomFormatDeleted struct {
	Format *models.CustomFormat
}

func (CustomFormatDeleted) eventName() string { return "CustomFormatDeleted" }

// Handler receives published events. Returning an error is logged, not fatal;
// later handlers still run.
type Handler func(ctx context.Context, event Event) error

// Bus is a minimal synchronous publish/subscribe dispatcher.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all events. Handlers filter by type.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish invokes every handler in subscription order. Publishes are
// serialized; a publish from inside a handler would deadlock, so handlers
// must not publish.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range b.handlers {
		if err := h(ctx, event); err != nil {
			log.Error().Err(err).Str("event", event.eventName()).Msg("Event handler failed")
		}
	}
}
