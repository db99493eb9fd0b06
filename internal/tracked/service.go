// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tracked

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/downloadclient"
	"github.com/autobrr/grabarr/internal/models"
)

// Config tunes the retry policy around download failures. Import retries are
// never policy driven; they require a fresh client signal.
type Config struct {
	// MaxDownloadRetries is how many consecutive failed polls are tolerated
	// before DownloadFailedPending escalates to DownloadFailed.
	MaxDownloadRetries int
}

// Service tracks accepted downloads through their external lifecycle.
// Events for one download are serialized by a per-entry lock; distinct
// downloads proceed in parallel.
type Service struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	download *Download
	// failures counts consecutive failed snapshots while the grab retry
	// budget lasts.
	failures int
	// lastItemStatus detects fresh client signals; an ImportFailed download
	// is only re-queued when the client item actually changed.
	lastItemStatus downloadclient.ItemStatus
	// removed marks an entry dropped from the tracked set. Callers that
	// fetched the entry before the sweep must re-check it under mu and
	// treat the download as no longer tracked.
	removed bool
}

// NewService returns an empty tracker.
func NewService(cfg Config) *Service {
	if cfg.MaxDownloadRetries < 0 {
		cfg.MaxDownloadRetries = 0
	}
	return &Service{
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
}

// Track registers a freshly grabbed release. A previous terminal lifecycle
// under the same key is replaced; re-tracking a live failed download resets
// it to Downloading and clears accumulated warnings.
func (s *Service) Track(clientID int, item downloadclient.Item, release *models.Release, indexer string) (*Download, error) {
	key := Key(clientID, item.ID)

	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			e = &entry{
				download: &Download{
					DownloadClientID: clientID,
					DownloadItem:     item,
					State:            StateDownloading,
					Status:           StatusOk,
					RemoteRelease:    release,
					Protocol:         item.Protocol,
					Indexer:          indexer,
					IsTrackable:      true,
				},
				lastItemStatus: item.Status,
			}
			s.entries[key] = e
			s.mu.Unlock()
			return s.snapshotOf(e), nil
		}
		s.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			// The sweep dropped this entry between the lookup and the lock;
			// the fresh grab starts a new lifecycle.
			e.mu.Unlock()
			continue
		}
		if e.download.State.IsTerminal() {
			e.mu.Unlock()
			s.detach(key, e)
			continue
		}

		if e.download.State != StateDownloading {
			if !CanTransition(e.download.State, StateDownloading) {
				err := &InvalidTransitionError{From: e.download.State, To: StateDownloading}
				e.mu.Unlock()
				return nil, err
			}
			e.download.State = StateDownloading
		}
		e.download.resetStatus()
		e.download.DownloadItem = item
		e.download.RemoteRelease = release
		e.download.Indexer = indexer
		e.download.IsTrackable = true
		e.failures = 0
		e.lastItemStatus = item.Status

		d := e.download.clone()
		e.mu.Unlock()
		return d, nil
	}
}

// detach removes a finished lifecycle so a fresh one can take the key. A
// no-op when another caller already replaced or removed the entry.
func (s *Service) detach(key string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[key] != e {
		return
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(s.entries, key)
}

// Apply reconciles one client's item snapshot against the tracked set.
// Unknown items become untrackable entries so they stay visible; tracked
// items missing from the snapshot end their lifecycle.
func (s *Service) Apply(clientID int, items []downloadclient.Item) {
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := Key(clientID, item.ID)
		seen[key] = struct{}{}

		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			// No grab decision correlates to this item; surface it but keep
			// it out of automated import and retry.
			e = &entry{
				download: &Download{
					DownloadClientID: clientID,
					DownloadItem:     item,
					State:            StateDownloading,
					Status:           StatusOk,
					Protocol:         item.Protocol,
					IsTrackable:      false,
				},
				lastItemStatus: item.Status,
			}
			s.entries[key] = e
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()

		e.mu.Lock()
		if !e.removed {
			s.applyItem(e, item)
		}
		e.mu.Unlock()
	}

	// Items that vanished from the client are gone for good; their tracked
	// lifecycle ends here, terminal or not. State is only read under the
	// entry lock; transitions hold that lock, not s.mu.
	s.mu.Lock()
	for key, e := range s.entries {
		if e.download.DownloadClientID != clientID {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		e.mu.Lock()
		e.removed = true
		state := e.download.State
		e.mu.Unlock()
		delete(s.entries, key)

		log.Debug().
			Str("key", key).
			Str("state", string(state)).
			Msg("Download item removed from client, dropping tracked download")
	}
	s.mu.Unlock()
}

// applyItem advances one tracked download from a fresh client snapshot.
// Caller holds the entry lock.
func (s *Service) applyItem(e *entry, item downloadclient.Item) {
	d := e.download

	freshSignal := item.Status != e.lastItemStatus
	e.lastItemStatus = item.Status
	d.DownloadItem = item

	// Ignored halts all automatic transitions, and terminal states accept
	// nothing further.
	if d.State.IsTerminal() {
		return
	}

	if !d.IsTrackable {
		if item.Status == downloadclient.ItemStatusFailed && item.Message != "" && freshSignal {
			d.Warn("download client reports: %s", item.Message)
		}
		return
	}

	switch item.Status {
	case downloadclient.ItemStatusFailed:
		s.applyFailure(e, item)

	case downloadclient.ItemStatusCompleted:
		switch d.State {
		case StateDownloading, StateDownloadFailedPending, StateDownloadFailed:
			d.State = StateImportPending
			e.failures = 0
		case StateImportFailed:
			// Retry the import once per changed client signal, never in a
			// tight loop on the same stale snapshot.
			if freshSignal {
				d.State = StateImportPending
			}
		}

	case downloadclient.ItemStatusDownloading, downloadclient.ItemStatusQueued, downloadclient.ItemStatusPaused:
		switch d.State {
		case StateDownloadFailedPending, StateDownloadFailed:
			// The client recovered the item; this is a fresh lifecycle leg.
			d.State = StateDownloading
			d.resetStatus()
			e.failures = 0
		}
	}
}

func (s *Service) applyFailure(e *entry, item downloadclient.Item) {
	d := e.download

	switch d.State {
	case StateDownloading, StateDownloadFailedPending:
		if d.State == StateDownloading {
			d.State = StateDownloadFailedPending
		}
		e.failures++

		message := "download reported as failed"
		if item.Message != "" {
			message = item.Message
		}

		if e.failures > s.cfg.MaxDownloadRetries {
			d.State = StateDownloadFailed
			d.fail(message)
			return
		}
		d.Warn("%s (attempt %d of %d)", message, e.failures, s.cfg.MaxDownloadRetries+1)
	}
}

// StartImport moves an import-pending download into Importing. Untrackable
// downloads are refused; nothing correlates them to a release to import.
func (s *Service) StartImport(key string) error {
	return s.transition(key, StateImporting, func(d *Download) error {
		if !d.IsTrackable {
			return &InvalidTransitionError{From: d.State, To: StateImporting}
		}
		item := d.DownloadItem
		d.ImportItem = &item
		return nil
	})
}

// CompleteImport finishes the lifecycle successfully. Accumulated warnings
// are cleared; the download ends Imported with an Ok status.
func (s *Service) CompleteImport(key string) error {
	return s.transition(key, StateImported, func(d *Download) error {
		d.resetStatus()
		return nil
	})
}

// FailImport records a failed import attempt. The download stays retryable
// on a fresh client signal while the item persists.
func (s *Service) FailImport(key string, importErr error) error {
	return s.transition(key, StateImportFailed, func(d *Download) error {
		d.fail(importErr.Error())
		return nil
	})
}

// Ignore administratively ends a download's lifecycle. It is permitted from
// every non-terminal state, including mid-retry, and blocks all further
// automatic transitions.
func (s *Service) Ignore(key string) error {
	return s.transition(key, StateIgnored, nil)
}

// Warn appends a status message to a tracked download.
func (s *Service) Warn(key, format string, args ...any) error {
	e, ok := s.entry(key)
	if !ok {
		return ErrNotTracked
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrNotTracked
	}
	e.download.Warn(format, args...)
	return nil
}

// MarkClientUnreachable records a transient communication failure as a
// warning on every live download of the client. States are left untouched;
// transport flakiness is not download failure.
func (s *Service) MarkClientUnreachable(clientID int, cause error) {
	terr := &TransientDownloadError{Op: "poll", Err: cause}

	for _, e := range s.clientEntries(clientID) {
		e.mu.Lock()
		if !e.removed && !e.download.State.IsTerminal() {
			e.download.Warn("%s", terr.Error())
		}
		e.mu.Unlock()
	}
}

// Get returns a snapshot of one tracked download.
func (s *Service) Get(key string) (*Download, bool) {
	e, ok := s.entry(key)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, false
	}
	return e.download.clone(), true
}

// All returns snapshots of every tracked download, ordered by key for
// stable presentation.
func (s *Service) All() []*Download {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	downloads := make([]*Download, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			downloads = append(downloads, e.download.clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(downloads, func(i, j int) bool {
		return downloads[i].Key() < downloads[j].Key()
	})
	return downloads
}

func (s *Service) transition(key string, to State, apply func(*Download) error) error {
	e, ok := s.entry(key)
	if !ok {
		return ErrNotTracked
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return ErrNotTracked
	}
	if !CanTransition(e.download.State, to) {
		return &InvalidTransitionError{From: e.download.State, To: to}
	}
	if apply != nil {
		if err := apply(e.download); err != nil {
			return err
		}
	}
	e.download.State = to
	return nil
}

func (s *Service) entry(key string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *Service) clientEntries(clientID int) []*entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*entry
	for _, e := range s.entries {
		if e.download.DownloadClientID == clientID {
			entries = append(entries, e)
		}
	}
	return entries
}

func (s *Service) snapshotOf(e *entry) *Download {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.download.clone()
}
