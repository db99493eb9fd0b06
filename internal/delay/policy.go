// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package delay implements the per-protocol delay window policy: which delay
// profile applies to a release, and whether the release may be grabbed
// immediately or must remain the best candidate for a window first.
package delay

import (
	"time"

	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/pkg/stringutils"
)

// Resolve selects the most specific delay profile for the given tags: the
// smallest-order profile whose tag set intersects, falling back to the
// untagged default. Profiles are expected in store order (sort_order ASC).
// Tags match case-insensitively.
func Resolve(profiles []*models.DelayProfile, tags []string) *models.DelayProfile {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[stringutils.NormalizeTag(t)] = struct{}{}
	}

	var fallback *models.DelayProfile
	for _, p := range profiles {
		if p.IsDefault() {
			if fallback == nil {
				fallback = p
			}
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[stringutils.NormalizeTag(t)]; ok {
				return p
			}
		}
	}
	return fallback
}

// Verdict is the outcome of the delay policy for one release.
type Verdict struct {
	// Bypass means grab immediately regardless of the window.
	Bypass bool
	// Window is the full delay window for the release's protocol; zero means
	// immediate grab. Meaningless when Bypass is set.
	Window time.Duration
}

// ShouldDelay applies the profile's bypass rules and protocol window.
// isHighestInProfile reports whether the release is the best allowed quality
// in its assigned quality profile; formatScore is the release's custom
// format score against that profile.
func ShouldDelay(profile *models.DelayProfile, release *models.Release, formatScore int, isHighestInProfile bool) Verdict {
	if profile == nil {
		return Verdict{Bypass: true}
	}

	if profile.BypassIfHighestQuality && isHighestInProfile {
		return Verdict{Bypass: true}
	}

	if profile.BypassIfAboveCustomFormatScore && formatScore > profile.MinimumCustomFormatScore {
		return Verdict{Bypass: true}
	}

	return Verdict{Window: time.Duration(profile.Delay(release.Protocol)) * time.Minute}
}
