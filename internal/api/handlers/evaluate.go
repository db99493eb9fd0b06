// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/decision"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/profiles"
	"github.com/autobrr/grabarr/pkg/releases"
)

// EvaluationObserver counts qualification decisions by outcome. Implemented
// by the metrics manager; nil disables counting.
type EvaluationObserver interface {
	ObserveEvaluation(decision string)
}

// EvaluateHandler qualifies candidate releases against a quality profile.
// Search integrations post raw release metadata here and act on the decision.
type EvaluateHandler struct {
	evaluator *decision.Evaluator
	profiles  *profiles.Service
	parser    *releases.Parser
	observer  EvaluationObserver
}

// NewEvaluateHandler returns a ready-to-use handler. observer may be nil.
func NewEvaluateHandler(evaluator *decision.Evaluator, profileService *profiles.Service, parser *releases.Parser, observer EvaluationObserver) *EvaluateHandler {
	return &EvaluateHandler{
		evaluator: evaluator,
		profiles:  profileService,
		parser:    parser,
		observer:  observer,
	}
}

type releasePayload struct {
	Title       string    `json:"title"`
	Indexer     string    `json:"indexer"`
	GUID        string    `json:"guid"`
	Protocol    string    `json:"protocol"`
	Size        int64     `json:"size"`
	PublishDate time.Time `json:"publishDate"`
	Tags        []string  `json:"tags"`
}

func (p *releasePayload) release(parser *releases.Parser) *models.Release {
	parsed := parser.Parse(p.Title)
	return &models.Release{
		Title:       p.Title,
		Indexer:     p.Indexer,
		GUID:        p.GUID,
		Protocol:    models.ParseProtocol(p.Protocol),
		Size:        p.Size,
		PublishDate: p.PublishDate,
		Quality:     releases.DetectQuality(parsed, p.Title),
		Tags:        p.Tags,
	}
}

type evaluatePayload struct {
	releasePayload
	QualityProfileID int `json:"qualityProfileId"`
}

type evaluateResponse struct {
	Quality  string            `json:"quality"`
	Decision decision.Decision `json:"decision"`
}

// Evaluate handles POST /api/release/evaluate
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var payload evaluatePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	if payload.Title == "" {
		RespondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if payload.QualityProfileID <= 0 {
		RespondError(w, http.StatusBadRequest, "qualityProfileId is required")
		return
	}

	profile, err := h.profiles.Get(r.Context(), payload.QualityProfileID)
	if err != nil {
		RespondStoreError(w, err, "Quality profile not found", "Failed to get quality profile")
		return
	}

	release := payload.release(h.parser)

	result, err := h.evaluator.Evaluate(r.Context(), release, profile)
	if err != nil {
		log.Error().Err(err).Str("title", payload.Title).Msg("evaluate: evaluation failed")
		RespondError(w, http.StatusInternalServerError, "Failed to evaluate release")
		return
	}

	if h.observer != nil {
		h.observer.ObserveEvaluation(string(result.Type))
	}

	RespondJSON(w, http.StatusOK, evaluateResponse{
		Quality:  release.Quality.Name,
		Decision: result,
	})
}

type evaluateBatchPayload struct {
	QualityProfileID  int              `json:"qualityProfileId"`
	PreferredProtocol string           `json:"preferredProtocol"`
	Releases          []releasePayload `json:"releases"`
}

type batchCandidate struct {
	Title    string            `json:"title"`
	GUID     string            `json:"guid"`
	Quality  string            `json:"quality"`
	Decision decision.Decision `json:"decision"`
}

type evaluateBatchResponse struct {
	// Candidates holds qualifying releases best first, then rejected ones
	// in request order.
	Candidates []batchCandidate `json:"candidates"`
}

// EvaluateBatch handles POST /api/release/evaluate/batch. All releases are
// qualified against the same profile and the survivors come back ranked, so
// callers can grab the head of the list.
func (h *EvaluateHandler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var payload evaluateBatchPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	if len(payload.Releases) == 0 {
		RespondError(w, http.StatusBadRequest, "releases are required")
		return
	}
	if payload.QualityProfileID <= 0 {
		RespondError(w, http.StatusBadRequest, "qualityProfileId is required")
		return
	}
	for _, rp := range payload.Releases {
		if rp.Title == "" {
			RespondError(w, http.StatusBadRequest, "every release needs a title")
			return
		}
	}

	profile, err := h.profiles.Get(r.Context(), payload.QualityProfileID)
	if err != nil {
		RespondStoreError(w, err, "Quality profile not found", "Failed to get quality profile")
		return
	}

	preferred := models.ParseProtocol(payload.PreferredProtocol)

	var (
		qualifying []decision.Candidate
		decisions  = make(map[*models.Release]decision.Decision, len(payload.Releases))
		rejected   []*models.Release
	)

	for i := range payload.Releases {
		release := payload.Releases[i].release(h.parser)

		result, err := h.evaluator.Evaluate(r.Context(), release, profile)
		if err != nil {
			log.Error().Err(err).Str("title", release.Title).Msg("evaluate: evaluation failed")
			RespondError(w, http.StatusInternalServerError, "Failed to evaluate releases")
			return
		}

		if h.observer != nil {
			h.observer.ObserveEvaluation(string(result.Type))
		}

		decisions[release] = result
		if result.Type == decision.TypeReject {
			rejected = append(rejected, release)
			continue
		}
		qualifying = append(qualifying, decision.Candidate{Release: release, FormatScore: result.FormatScore})
	}

	decision.Rank(qualifying, preferred)

	resp := evaluateBatchResponse{Candidates: make([]batchCandidate, 0, len(payload.Releases))}
	for _, c := range qualifying {
		resp.Candidates = append(resp.Candidates, batchCandidate{
			Title:    c.Release.Title,
			GUID:     c.Release.GUID,
			Quality:  c.Release.Quality.Name,
			Decision: decisions[c.Release],
		})
	}
	for _, release := range rejected {
		resp.Candidates = append(resp.Candidates, batchCandidate{
			Title:    release.Title,
			GUID:     release.GUID,
			Quality:  release.Quality.Name,
			Decision: decisions[release],
		})
	}

	RespondJSON(w, http.StatusOK, resp)
}
