// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package formats

import "github.com/autobrr/grabarr/internal/models"

// Score sums the profile's scores for every matched format. Matching is the
// detector's job; Score only aggregates. The result may be negative.
func Score(matched []*models.CustomFormat, profile *models.QualityProfile) int {
	if len(matched) == 0 || len(profile.FormatItems) == 0 {
		return 0
	}

	scores := make(map[int]int, len(profile.FormatItems))
	for _, item := range profile.FormatItems {
		scores[item.FormatID] = item.Score
	}

	total := 0
	for _, format := range matched {
		total += scores[format.ID]
	}
	return total
}
