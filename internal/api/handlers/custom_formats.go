// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/formats"
	"github.com/autobrr/grabarr/internal/models"
)

// CustomFormatHandler serves CRUD endpoints for custom formats. Creates are
// compiled before persisting so a broken expression never reaches the
// database, and every successful write publishes an event so quality
// profiles stay in sync.
type CustomFormatHandler struct {
	store    *models.CustomFormatStore
	detector *formats.ExprDetector
	bus      *events.Bus
}

// NewCustomFormatHandler returns a ready-to-use handler.
func NewCustomFormatHandler(store *models.CustomFormatStore, detector *formats.ExprDetector, bus *events.Bus) *CustomFormatHandler {
	return &CustomFormatHandler{
		store:    store,
		detector: detector,
		bus:      bus,
	}
}

type customFormatPayload struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// List handles GET /api/custom-formats
func (h *CustomFormatHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("custom formats: failed to list")
		RespondError(w, http.StatusInternalServerError, "Failed to list custom formats")
		return
	}
	if list == nil {
		list = []*models.CustomFormat{}
	}
	RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/custom-formats/{id}
func (h *CustomFormatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "custom format ID")
	if !ok {
		return
	}

	format, err := h.store.Get(r.Context(), id)
	if err != nil {
		RespondStoreError(w, err, "Custom format not found", "Failed to get custom format")
		return
	}
	RespondJSON(w, http.StatusOK, format)
}

// Create handles POST /api/custom-formats
func (h *CustomFormatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload customFormatPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	if err := h.detector.Compile(payload.Expression); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid expression: "+err.Error())
		return
	}

	created, err := h.store.Create(r.Context(), &models.CustomFormat{
		Name:       payload.Name,
		Expression: payload.Expression,
	})
	if err != nil {
		log.Error().Err(err).Str("name", payload.Name).Msg("custom formats: failed to create")
		RespondStoreError(w, err, "Custom format not found", "Failed to create custom format")
		return
	}

	h.bus.Publish(r.Context(), events.CustomFormatAdded{Format: created})

	RespondJSON(w, http.StatusCreated, created)
}

// Delete handles DELETE /api/custom-formats/{id}
func (h *CustomFormatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParsePositiveIntParam(w, r, "id", "custom format ID")
	if !ok {
		return
	}

	format, err := h.store.Get(r.Context(), id)
	if err != nil {
		RespondStoreError(w, err, "Custom format not found", "Failed to get custom format")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Int("id", id).Msg("custom formats: failed to delete")
		RespondStoreError(w, err, "Custom format not found", "Failed to delete custom format")
		return
	}

	h.bus.Publish(r.Context(), events.CustomFormatDeleted{Format: format})

	w.WriteHeader(http.StatusNoContent)
}
