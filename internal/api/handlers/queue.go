// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/tracked"
)

// QueueHandler exposes the tracked download queue. The queue is in-memory
// state rebuilt from download client polls, so reads are cheap snapshots.
type QueueHandler struct {
	tracker *tracked.Service
}

// NewQueueHandler returns a ready-to-use handler.
func NewQueueHandler(tracker *tracked.Service) *QueueHandler {
	return &QueueHandler{tracker: tracker}
}

// List handles GET /api/queue
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	downloads := h.tracker.All()
	if downloads == nil {
		downloads = []*tracked.Download{}
	}
	RespondJSON(w, http.StatusOK, downloads)
}

// Get handles GET /api/queue/{key}
func (h *QueueHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseStringParam(w, r, "key", "download key")
	if !ok {
		return
	}

	download, found := h.tracker.Get(key)
	if !found {
		RespondError(w, http.StatusNotFound, "Tracked download not found")
		return
	}
	RespondJSON(w, http.StatusOK, download)
}

// Ignore handles POST /api/queue/{key}/ignore. An ignored download stops
// receiving client updates but stays visible until it vanishes from the
// client.
func (h *QueueHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseStringParam(w, r, "key", "download key")
	if !ok {
		return
	}

	if err := h.tracker.Ignore(key); err != nil {
		if errors.Is(err, tracked.ErrNotTracked) {
			RespondError(w, http.StatusNotFound, "Tracked download not found")
			return
		}

		var invalidErr *tracked.InvalidTransitionError
		if errors.As(err, &invalidErr) {
			RespondError(w, http.StatusConflict, invalidErr.Error())
			return
		}

		log.Error().Err(err).Str("key", key).Msg("queue: failed to ignore download")
		RespondError(w, http.StatusInternalServerError, "Failed to ignore download")
		return
	}

	download, _ := h.tracker.Get(key)
	RespondJSON(w, http.StatusOK, download)
}
