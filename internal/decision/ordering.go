// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"sort"
	"strings"

	"github.com/autobrr/grabarr/internal/models"
)

// Candidate pairs a qualifying release with its computed format score for
// ranking against other candidates for the same wanted item.
type Candidate struct {
	Release     *models.Release
	FormatScore int
}

// Compare orders two candidates; negative means a ranks ahead of b. The
// order is quality group weight, then format score, then protocol preference,
// then publish date (newer first), then indexer+guid so no two distinct
// releases ever compare equal.
func Compare(a, b Candidate, preferred models.Protocol) int {
	if a.Release.Quality.GroupWeight != b.Release.Quality.GroupWeight {
		if a.Release.Quality.GroupWeight > b.Release.Quality.GroupWeight {
			return -1
		}
		return 1
	}

	if a.FormatScore != b.FormatScore {
		if a.FormatScore > b.FormatScore {
			return -1
		}
		return 1
	}

	if a.Release.Protocol != b.Release.Protocol {
		if a.Release.Protocol == preferred {
			return -1
		}
		if b.Release.Protocol == preferred {
			return 1
		}
	}

	if !a.Release.PublishDate.Equal(b.Release.PublishDate) {
		if a.Release.PublishDate.After(b.Release.PublishDate) {
			return -1
		}
		return 1
	}

	return strings.Compare(a.Release.Key(), b.Release.Key())
}

// Rank sorts candidates best first using Compare. The sort is stable by
// construction since Compare is total.
func Rank(candidates []Candidate, preferred models.Protocol) {
	sort.Slice(candidates, func(i, j int) bool {
		return Compare(candidates[i], candidates[j], preferred) < 0
	})
}
