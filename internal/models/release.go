// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"time"

	"github.com/autobrr/grabarr/internal/quality"
)

// Release is a candidate release reported by an indexer, already parsed into
// the fields the qualification core needs. The core never fetches releases
// itself; search execution hands these in.
type Release struct {
	Title       string          `json:"title"`
	Indexer     string          `json:"indexer"`
	GUID        string          `json:"guid"`
	Protocol    Protocol        `json:"protocol"`
	Size        int64           `json:"size"`
	PublishDate time.Time       `json:"publishDate"`
	Quality     quality.Quality `json:"quality"`
	// Tags scope delay profile resolution; they come from the wanted item's
	// artist record, not from the release itself.
	Tags []string `json:"tags,omitempty"`
}

// Key returns a stable identity for tie-breaking and deduplication.
func (r *Release) Key() string {
	return r.Indexer + ":" + r.GUID
}
