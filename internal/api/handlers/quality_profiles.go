// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/profiles"
)

// QualityProfileHandler serves CRUD endpoints for quality profiles. All
// writes go through the profile service so reference checks and validation
// apply uniformly.
type QualityProfileHandler struct {
	service *profiles.Service
}

// NewQualityProfileHandler returns a ready-to-use handler.
func NewQualityProfileHandler(service *profiles.Service) *QualityProfileHandler {
	return &QualityProfileHandler{service: service}
}

// qualityProfilePayload is the request body for create/update operations.
type qualityProfilePayload struct {
	Name              string                      `json:"name"`
	Cutoff            int                         `json:"cutoff"`
	MinFormatScore    int                         `json:"minFormatScore"`
	CutoffFormatScore int                         `json:"cutoffFormatScore"`
	Items             []models.QualityProfileItem `json:"items"`
	FormatItems       []models.ProfileFormatItem  `json:"formatItems"`
}

func (p *qualityProfilePayload) profile(id int) *models.QualityProfile {
	return &models.QualityProfile{
		ID:                id,
		Name:              p.Name,
		Cutoff:            p.Cutoff,
		MinFormatScore:    p.MinFormatScore,
		CutoffFormatScore: p.CutoffFormatScore,
		Items:             p.Items,
		FormatItems:       p.FormatItems,
	}
}

// List handles GET /api/quality-profiles
func (h *QualityProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.All(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("quality profiles: failed to list")
		RespondError(w, http.StatusInternalServerError, "Failed to list quality profiles")
		return
	}
	if list == nil {
		list = []*models.QualityProfile{}
	}
	RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/quality-profiles/{id}
func (h *QualityProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "quality profile ID")
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		RespondStoreError(w, err, "Quality profile not found", "Failed to get quality profile")
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// Create handles POST /api/quality-profiles
func (h *QualityProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload qualityProfilePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	created, err := h.service.Add(r.Context(), payload.profile(0))
	if err != nil {
		log.Error().Err(err).Str("name", payload.Name).Msg("quality profiles: failed to create")
		RespondStoreError(w, err, "Quality profile not found", "Failed to create quality profile")
		return
	}
	RespondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/quality-profiles/{id}
func (h *QualityProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "quality profile ID")
	if !ok {
		return
	}

	var payload qualityProfilePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	updated, err := h.service.Update(r.Context(), payload.profile(id))
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("quality profiles: failed to update")
		RespondStoreError(w, err, "Quality profile not found", "Failed to update quality profile")
		return
	}
	RespondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/quality-profiles/{id}
func (h *QualityProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "quality profile ID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Int("id", id).Msg("quality profiles: failed to delete")
		RespondStoreError(w, err, "Quality profile not found", "Failed to delete quality profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
