// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package events_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/models"
)

func TestBusPublishOrder(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()

	var order []string
	bus.Subscribe(func(ctx context.Context, event events.Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(func(ctx context.Context, event events.Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(context.Background(), events.ApplicationStarted{})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBusHandlerErrorDoesNotStopDispatch(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()

	bus.Subscribe(func(ctx context.Context, event events.Event) error {
		return errors.New("boom")
	})

	var got events.Event
	bus.Subscribe(func(ctx context.Context, event events.Event) error {
		got = event
		return nil
	})

	format := &models.CustomFormat{ID: 1, Name: "Freeleech"}
	bus.Publish(context.Background(), events.CustomFormatAdded{Format: format})

	added, ok := got.(events.CustomFormatAdded)
	assert.True(t, ok)
	assert.Same(t, format, added.Format)
}

func TestBusNoSubscribers(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	// Publishing into the void is a no-op, not a panic.
	bus.Publish(context.Background(), events.CustomFormatDeleted{Format: &models.CustomFormat{ID: 2}})
}
