// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package tracked owns the lifecycle of accepted downloads: the state
// machine from grab through import, worst-wins status aggregation, and the
// status messages surfaced to users.
package tracked

import (
	"fmt"

	"github.com/autobrr/grabarr/internal/downloadclient"
	"github.com/autobrr/grabarr/internal/models"
)

// State is the position of a tracked download in its lifecycle.
type State string

const (
	StateDownloading           State = "downloading"
	StateDownloadFailedPending State = "downloadFailedPending"
	StateDownloadFailed        State = "downloadFailed"
	StateImportPending         State = "importPending"
	StateImporting             State = "importing"
	StateImportFailed          State = "importFailed"
	StateImported              State = "imported"
	StateIgnored               State = "ignored"
)

// IsTerminal reports whether no further transitions are ever accepted.
// DownloadFailed and ImportFailed are not terminal here: while the client
// item persists they may still be retried.
func (s State) IsTerminal() bool {
	return s == StateImported || s == StateIgnored
}

// transitions lists the permitted state changes. Ignored is additionally
// reachable from every non-terminal state and is handled separately.
var transitions = map[State][]State{
	StateDownloading:           {StateDownloadFailedPending, StateDownloadFailed, StateImportPending},
	StateDownloadFailedPending: {StateDownloading, StateDownloadFailed},
	StateDownloadFailed:        {StateDownloading},
	StateImportPending:         {StateImporting},
	StateImporting:             {StateImported, StateImportFailed},
	StateImportFailed:          {StateImportPending},
	StateImported:              {},
	StateIgnored:               {},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	if to == StateIgnored {
		return !from.IsTerminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Status is the user-facing health of a tracked download, ordered so that a
// worse status always dominates.
type Status int

const (
	StatusOk Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler for JSON snapshots.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusMessage is one user-facing note attached to a tracked download.
type StatusMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Download is the engine's live record of one accepted release's journey.
// All mutation goes through Service, which serializes events per download.
type Download struct {
	DownloadClientID int                  `json:"downloadClientId"`
	DownloadItem     downloadclient.Item  `json:"downloadItem"`
	ImportItem       *downloadclient.Item `json:"importItem,omitempty"`
	State            State                `json:"state"`
	Status           Status               `json:"status"`
	StatusMessages   []StatusMessage      `json:"statusMessages"`
	RemoteRelease    *models.Release      `json:"remoteRelease,omitempty"`
	Protocol         models.Protocol      `json:"protocol"`
	Indexer          string               `json:"indexer,omitempty"`
	// IsTrackable is false when the client item cannot be correlated to a
	// grabbed release (e.g. manually added); such items are surfaced but
	// excluded from automated import and retry.
	IsTrackable bool `json:"isTrackable"`
}

// Key identifies a tracked download across client polls.
func (d *Download) Key() string {
	return Key(d.DownloadClientID, d.DownloadItem.ID)
}

// Key builds the identity a download is tracked under.
func Key(clientID int, itemID string) string {
	return fmt.Sprintf("%d:%s", clientID, itemID)
}

// Warn appends a formatted status message and forces at least Warning.
// Messages are additive; they are only cleared by a fresh lifecycle restart.
func (d *Download) Warn(format string, args ...any) {
	d.WarnMessages(StatusMessage{Title: d.DownloadItem.Title, Message: fmt.Sprintf(format, args...)})
}

// WarnMessages appends status messages and forces at least Warning. An
// existing Error status is preserved: status is monotonically the worst
// observed until a lifecycle restart resets it.
func (d *Download) WarnMessages(messages ...StatusMessage) {
	d.StatusMessages = append(d.StatusMessages, messages...)
	if d.Status < StatusWarning {
		d.Status = StatusWarning
	}
}

func (d *Download) fail(message string) {
	d.StatusMessages = append(d.StatusMessages, StatusMessage{Title: d.DownloadItem.Title, Message: message})
	d.Status = StatusError
}

// clone returns a deep copy safe to hand outside the service.
func (d *Download) clone() *Download {
	c := *d
	if d.ImportItem != nil {
		item := *d.ImportItem
		c.ImportItem = &item
	}
	if d.RemoteRelease != nil {
		release := *d.RemoteRelease
		c.RemoteRelease = &release
	}
	if d.StatusMessages != nil {
		c.StatusMessages = make([]StatusMessage, len(d.StatusMessages))
		copy(c.StatusMessages, d.StatusMessages)
	}
	return &c
}

// resetStatus clears accumulated messages on a fresh successful transition,
// e.g. re-entering Downloading on a retried grab.
func (d *Download) resetStatus() {
	d.Status = StatusOk
	d.StatusMessages = nil
}
