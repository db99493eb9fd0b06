// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/models"
)

// DelayProfileHandler serves CRUD endpoints for delay profiles.
type DelayProfileHandler struct {
	store *models.DelayProfileStore
}

// NewDelayProfileHandler returns a ready-to-use handler.
func NewDelayProfileHandler(store *models.DelayProfileStore) *DelayProfileHandler {
	return &DelayProfileHandler{store: store}
}

type delayProfilePayload struct {
	PreferredProtocol              string   `json:"preferredProtocol"`
	UsenetDelay                    int      `json:"usenetDelay"`
	TorrentDelay                   int      `json:"torrentDelay"`
	BypassIfHighestQuality         bool     `json:"bypassIfHighestQuality"`
	BypassIfAboveCustomFormatScore bool     `json:"bypassIfAboveCustomFormatScore"`
	MinimumCustomFormatScore       int      `json:"minimumCustomFormatScore"`
	Tags                           []string `json:"tags"`
}

func (p *delayProfilePayload) profile(id int) *models.DelayProfile {
	return &models.DelayProfile{
		ID:                             id,
		PreferredProtocol:              models.ParseProtocol(p.PreferredProtocol),
		UsenetDelay:                    p.UsenetDelay,
		TorrentDelay:                   p.TorrentDelay,
		BypassIfHighestQuality:         p.BypassIfHighestQuality,
		BypassIfAboveCustomFormatScore: p.BypassIfAboveCustomFormatScore,
		MinimumCustomFormatScore:       p.MinimumCustomFormatScore,
		Tags:                           p.Tags,
	}
}

// List handles GET /api/delay-profiles. Profiles come back in evaluation
// order, the untagged default last.
func (h *DelayProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("delay profiles: failed to list")
		RespondError(w, http.StatusInternalServerError, "Failed to list delay profiles")
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/delay-profiles/{id}
func (h *DelayProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "delay profile ID")
	if !ok {
		return
	}

	profile, err := h.store.Get(r.Context(), id)
	if err != nil {
		RespondStoreError(w, err, "Delay profile not found", "Failed to get delay profile")
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// Create handles POST /api/delay-profiles
func (h *DelayProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload delayProfilePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	created, err := h.store.Create(r.Context(), payload.profile(0))
	if err != nil {
		log.Error().Err(err).Msg("delay profiles: failed to create")
		RespondStoreError(w, err, "Delay profile not found", "Failed to create delay profile")
		return
	}
	RespondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/delay-profiles/{id}
func (h *DelayProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "delay profile ID")
	if !ok {
		return
	}

	var payload delayProfilePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	updated, err := h.store.Update(r.Context(), payload.profile(id))
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("delay profiles: failed to update")
		RespondStoreError(w, err, "Delay profile not found", "Failed to update delay profile")
		return
	}
	RespondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/delay-profiles/{id}. The default profile is
// pinned and returns 409.
func (h *DelayProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "delay profile ID")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Int("id", id).Msg("delay profiles: failed to delete")
		RespondStoreError(w, err, "Delay profile not found", "Failed to delete delay profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
