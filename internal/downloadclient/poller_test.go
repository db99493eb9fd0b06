// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package downloadclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/grabarr/internal/models"
)

type fakeClient struct {
	id    int
	items []Item
	err   error
	// failuresLeft makes the first N calls fail before items are returned.
	failuresLeft atomic.Int32
	calls        atomic.Int32
}

func (c *fakeClient) ID() int                   { return c.id }
func (c *fakeClient) Name() string              { return "fake" }
func (c *fakeClient) Protocol() models.Protocol { return models.ProtocolTorrent }

func (c *fakeClient) Items(ctx context.Context) ([]Item, error) {
	c.calls.Add(1)
	if c.failuresLeft.Add(-1) >= 0 {
		return nil, errors.New("connection reset")
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

type appliedSnapshot struct {
	clientID int
	items    []Item
}

// fakeTracker records what the poller feeds it.
type fakeTracker struct {
	mu          sync.Mutex
	applied     []appliedSnapshot
	unreachable []int
}

func (t *fakeTracker) Apply(clientID int, items []Item) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied = append(t.applied, appliedSnapshot{clientID: clientID, items: items})
}

func (t *fakeTracker) MarkClientUnreachable(clientID int, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unreachable = append(t.unreachable, clientID)
}

func (t *fakeTracker) snapshot() ([]appliedSnapshot, []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]appliedSnapshot(nil), t.applied...), append([]int(nil), t.unreachable...)
}

func TestPollerAppliesSnapshots(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	client := &fakeClient{
		id: 1,
		items: []Item{
			{ID: "hash1", Title: "Artist - Album", Status: ItemStatusDownloading, Protocol: models.ProtocolTorrent},
		},
	}

	p := NewPoller(tracker, time.Minute, client)
	p.pollAll(context.Background())

	applied, unreachable := tracker.snapshot()
	require.Len(t, applied, 1)
	assert.Equal(t, 1, applied[0].clientID)
	require.Len(t, applied[0].items, 1)
	assert.Equal(t, "Artist - Album", applied[0].items[0].Title)
	assert.Empty(t, unreachable)
}

func TestPollerRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	client := &fakeClient{
		id:    1,
		items: []Item{{ID: "hash1", Status: ItemStatusDownloading, Protocol: models.ProtocolTorrent}},
	}
	client.failuresLeft.Store(1)

	p := NewPoller(tracker, time.Minute, client)
	p.pollAll(context.Background())

	applied, unreachable := tracker.snapshot()
	assert.Len(t, applied, 1, "a single transient failure is absorbed by the retry")
	assert.Empty(t, unreachable)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestPollerMarksClientUnreachable(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	client := &fakeClient{id: 1, err: errors.New("connection refused")}

	p := NewPoller(tracker, time.Minute, client)
	p.pollAll(context.Background())

	applied, unreachable := tracker.snapshot()
	assert.Empty(t, applied, "a failed poll never applies a snapshot")
	assert.Equal(t, []int{1}, unreachable)
	assert.Equal(t, int32(3), client.calls.Load(), "poll failures are retried before surfacing")
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	client := &fakeClient{id: 1}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(tracker, time.Hour, client)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Run polls once immediately, then waits on the ticker.
	require.Eventually(t, func() bool { return client.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}

func TestNewPollerDefaultInterval(t *testing.T) {
	t.Parallel()

	p := NewPoller(&fakeTracker{}, 0)
	assert.Equal(t, 30*time.Second, p.interval)
}
