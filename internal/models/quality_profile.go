// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/grabarr/internal/dbinterface"
	"github.com/autobrr/grabarr/internal/quality"
)

// GroupIDBase is the first synthetic id assigned to quality groups inside a
// profile. Leaf items use the quality's own catalog id, which is always below
// this value.
const GroupIDBase = 1000

// QualityProfileItem is one entry in a profile's ranked quality list, read
// top-to-bottom from worst to best. It is a shallow two-level variant: either
// a leaf wrapping a single catalog quality, or a group with a synthetic id
// (>= GroupIDBase) wrapping leaf items that share a group weight.
type QualityProfileItem struct {
	// ID is the synthetic group id; zero for leaves.
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	// Quality is set on leaves only.
	Quality *quality.Quality `json:"quality,omitempty"`
	// Items holds the group's leaves; empty on leaves. Groups never nest.
	Items   []QualityProfileItem `json:"items,omitempty"`
	Allowed bool                 `json:"allowed"`
}

// IsGroup reports whether the item is a quality group.
func (i *QualityProfileItem) IsGroup() bool {
	return len(i.Items) > 0
}

// ItemID returns the id the profile cutoff references: the synthetic group id
// for groups, the catalog quality id for leaves.
func (i *QualityProfileItem) ItemID() int {
	if i.IsGroup() {
		return i.ID
	}
	if i.Quality != nil {
		return i.Quality.ID
	}
	return 0
}

// Contains reports whether the item covers the given catalog quality id.
func (i *QualityProfileItem) Contains(qualityID int) bool {
	if i.Quality != nil && i.Quality.ID == qualityID {
		return true
	}
	for idx := range i.Items {
		if i.Items[idx].Contains(qualityID) {
			return true
		}
	}
	return false
}

// ProfileFormatItem binds a custom format to its score within one profile.
// Order carries no meaning; scores sum.
type ProfileFormatItem struct {
	FormatID int `json:"formatId"`
	Score    int `json:"score"`
}

// QualityProfile defines which encodings are acceptable for a wanted item and
// when upgrade searching stops.
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Cutoff references the ItemID of exactly one allowed item.
	Cutoff            int                  `json:"cutoff"`
	MinFormatScore    int                  `json:"minFormatScore"`
	CutoffFormatScore int                  `json:"cutoffFormatScore"`
	Items             []QualityProfileItem `json:"items"`
	FormatItems       []ProfileFormatItem  `json:"formatItems"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// Validate returns a *ValidationError when the profile violates its
// invariants. It never mutates the profile.
func (p *QualityProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "quality profile name is required"}
	}
	if len(p.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "quality profile must have at least one quality"}
	}

	cutoff := p.itemByID(p.Cutoff)
	if cutoff == nil {
		return &ValidationError{Field: "cutoff", Reason: fmt.Sprintf("cutoff item %d does not exist in profile", p.Cutoff)}
	}
	if !cutoff.Allowed {
		return &ValidationError{Field: "cutoff", Reason: "cutoff must be an allowed quality"}
	}

	if len(p.FormatItems) == 0 && (p.MinFormatScore != 0 || p.CutoffFormatScore != 0) {
		return &ValidationError{Field: "minFormatScore", Reason: "format score thresholds must be 0 when no format items exist"}
	}

	return nil
}

func (p *QualityProfile) itemByID(id int) *QualityProfileItem {
	for idx := range p.Items {
		if p.Items[idx].ItemID() == id {
			return &p.Items[idx]
		}
	}
	return nil
}

// IsAllowed reports whether the catalog quality is acceptable under this
// profile. Group membership follows the group's allowed flag.
func (p *QualityProfile) IsAllowed(qualityID int) bool {
	for idx := range p.Items {
		if p.Items[idx].Contains(qualityID) {
			return p.Items[idx].Allowed
		}
	}
	return false
}

// IsHighest reports whether the catalog quality belongs to the best allowed
// item in the profile. Items are ordered worst to best, so the last allowed
// entry is the top.
func (p *QualityProfile) IsHighest(qualityID int) bool {
	for idx := len(p.Items) - 1; idx >= 0; idx-- {
		if p.Items[idx].Allowed {
			return p.Items[idx].Contains(qualityID)
		}
	}
	return false
}

// Rank returns the position of the item covering the quality within the
// profile's worst-to-best order, and false when the quality is not listed.
func (p *QualityProfile) Rank(qualityID int) (int, bool) {
	for idx := range p.Items {
		if p.Items[idx].Contains(qualityID) {
			return idx, true
		}
	}
	return 0, false
}

// Clone returns a deep copy. Evaluations operate on clones so that
// administrative updates never become visible mid-decision.
func (p *QualityProfile) Clone() *QualityProfile {
	clone := *p

	clone.Items = make([]QualityProfileItem, len(p.Items))
	for i, item := range p.Items {
		clone.Items[i] = item
		if item.Quality != nil {
			q := *item.Quality
			clone.Items[i].Quality = &q
		}
		if len(item.Items) > 0 {
			clone.Items[i].Items = make([]QualityProfileItem, len(item.Items))
			for j, leaf := range item.Items {
				clone.Items[i].Items[j] = leaf
				if leaf.Quality != nil {
					q := *leaf.Quality
					clone.Items[i].Items[j].Quality = &q
				}
			}
		}
	}

	clone.FormatItems = make([]ProfileFormatItem, len(p.FormatItems))
	copy(clone.FormatItems, p.FormatItems)

	return &clone
}

// QualityProfileStore handles persistence for quality profiles.
type QualityProfileStore struct {
	db dbinterface.Querier
}

// NewQualityProfileStore returns a QualityProfileStore backed by db.
func NewQualityProfileStore(db dbinterface.Querier) *QualityProfileStore {
	return &QualityProfileStore{db: db}
}

func scanProfileJSON(dest *QualityProfile, itemsJSON, formatItemsJSON string) error {
	if err := json.Unmarshal([]byte(itemsJSON), &dest.Items); err != nil {
		return fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(formatItemsJSON), &dest.FormatItems); err != nil {
		return fmt.Errorf("unmarshal format_items: %w", err)
	}
	if dest.Items == nil {
		dest.Items = []QualityProfileItem{}
	}
	if dest.FormatItems == nil {
		dest.FormatItems = []ProfileFormatItem{}
	}
	return nil
}

// List returns all quality profiles ordered by name.
func (s *QualityProfileStore) List(ctx context.Context) ([]*QualityProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cutoff, min_format_score, cutoff_format_score, items, format_items, created_at, updated_at
		FROM quality_profiles
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*QualityProfile
	for rows.Next() {
		var p QualityProfile
		var itemsJSON, formatItemsJSON string
		if err := rows.Scan(&p.ID, &p.Name, &p.Cutoff, &p.MinFormatScore, &p.CutoffFormatScore, &itemsJSON, &formatItemsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanProfileJSON(&p, itemsJSON, formatItemsJSON); err != nil {
			return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns the quality profile with the given id, or sql.ErrNoRows.
func (s *QualityProfileStore) Get(ctx context.Context, id int) (*QualityProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, cutoff, min_format_score, cutoff_format_score, items, format_items, created_at, updated_at
		FROM quality_profiles
		WHERE id = ?
	`, id)

	var p QualityProfile
	var itemsJSON, formatItemsJSON string
	if err := row.Scan(&p.ID, &p.Name, &p.Cutoff, &p.MinFormatScore, &p.CutoffFormatScore, &itemsJSON, &formatItemsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := scanProfileJSON(&p, itemsJSON, formatItemsJSON); err != nil {
		return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
	}
	return &p, nil
}

// Exists reports whether a profile with the given id is stored.
func (s *QualityProfileStore) Exists(ctx context.Context, id int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quality_profiles WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of stored profiles.
func (s *QualityProfileStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quality_profiles`).Scan(&n)
	return n, err
}

// Create validates and inserts a new profile, returning it with the generated id.
func (s *QualityProfileStore) Create(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	formatItemsJSON, err := json.Marshal(p.FormatItems)
	if err != nil {
		return nil, fmt.Errorf("marshal format_items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quality_profiles (name, cutoff, min_format_score, cutoff_format_score, items, format_items)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(p.Name), p.Cutoff, p.MinFormatScore, p.CutoffFormatScore, string(itemsJSON), string(formatItemsJSON))
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("quality profile %q already exists", p.Name)}
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update validates and replaces the mutable fields of an existing profile.
func (s *QualityProfileStore) Update(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	formatItemsJSON, err := json.Marshal(p.FormatItems)
	if err != nil {
		return nil, fmt.Errorf("marshal format_items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE quality_profiles
		SET name = ?, cutoff = ?, min_format_score = ?, cutoff_format_score = ?,
			items = ?, format_items = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(p.Name), p.Cutoff, p.MinFormatScore, p.CutoffFormatScore, string(itemsJSON), string(formatItemsJSON), p.ID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return s.Get(ctx, p.ID)
}

// Delete removes the profile with the given id. Reference checks are the
// profile service's responsibility, not the store's.
func (s *QualityProfileStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quality_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
