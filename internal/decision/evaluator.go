// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package decision classifies candidate releases: accept now, hold for the
// delay window, or reject. It composes quality profile resolution, custom
// format scoring, and the delay policy.
package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/autobrr/grabarr/internal/delay"
	"github.com/autobrr/grabarr/internal/formats"
	"github.com/autobrr/grabarr/internal/models"
)

// Type classifies the outcome of an evaluation.
type Type string

const (
	// TypeGrabNow means the release is acceptable and the delay policy does
	// not hold it back.
	TypeGrabNow Type = "grabNow"
	// TypeHoldPending means the release is acceptable but must remain the
	// best known candidate until its delay window elapses.
	TypeHoldPending Type = "holdPending"
	// TypeReject is terminal; the release will never qualify for its profile.
	TypeReject Type = "rejected"
)

// Decision is the evaluation result for one candidate release.
type Decision struct {
	Type        Type          `json:"type"`
	Reason      string        `json:"reason,omitempty"`
	FormatScore int           `json:"formatScore"`
	Remaining   time.Duration `json:"remaining,omitempty"`
}

// Evaluator qualifies candidate releases against profile snapshots.
type Evaluator struct {
	detector      formats.Detector
	formatStore   *models.CustomFormatStore
	delayProfiles *models.DelayProfileStore
	now           func() time.Time
}

// New returns an evaluator reading format and delay profile snapshots from
// the given stores.
func New(detector formats.Detector, formatStore *models.CustomFormatStore, delayProfiles *models.DelayProfileStore) *Evaluator {
	return &Evaluator{
		detector:      detector,
		formatStore:   formatStore,
		delayProfiles: delayProfiles,
		now:           time.Now,
	}
}

// Evaluate classifies the release against the quality profile. The profile is
// cloned first so concurrent administrative updates cannot surface mid-check.
func (e *Evaluator) Evaluate(ctx context.Context, release *models.Release, profile *models.QualityProfile) (Decision, error) {
	profile = profile.Clone()

	if !profile.IsAllowed(release.Quality.ID) {
		return Decision{
			Type:   TypeReject,
			Reason: fmt.Sprintf("quality %s is not allowed by profile %s", release.Quality.Name, profile.Name),
		}, nil
	}

	allFormats, err := e.formatStore.List(ctx)
	if err != nil {
		return Decision{}, errors.Wrap(err, "list custom formats")
	}

	matched := e.detector.Matches(release, allFormats)
	score := formats.Score(matched, profile)

	if score < profile.MinFormatScore {
		return Decision{
			Type:        TypeReject,
			FormatScore: score,
			Reason:      fmt.Sprintf("custom format score %d is below minimum %d", score, profile.MinFormatScore),
		}, nil
	}

	delayProfiles, err := e.delayProfiles.List(ctx)
	if err != nil {
		return Decision{}, errors.Wrap(err, "list delay profiles")
	}

	delayProfile := delay.Resolve(delayProfiles, release.Tags)
	verdict := delay.ShouldDelay(delayProfile, release, score, profile.IsHighest(release.Quality.ID))

	if verdict.Bypass || verdict.Window == 0 {
		return Decision{Type: TypeGrabNow, FormatScore: score}, nil
	}

	age := e.now().Sub(release.PublishDate)
	if age >= verdict.Window {
		return Decision{Type: TypeGrabNow, FormatScore: score}, nil
	}

	return Decision{
		Type:        TypeHoldPending,
		FormatScore: score,
		Remaining:   verdict.Window - age,
		Reason:      fmt.Sprintf("waiting for %s delay window", release.Protocol),
	}, nil
}
