// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/autobrr/grabarr/internal/dbinterface"
)

// DefaultDelayProfileID is the untagged fallback profile seeded by the schema.
// It is never deletable and never carries tags.
const DefaultDelayProfileID = 1

// DelayProfile decides how long a release must remain the best known
// candidate before it is grabbed automatically, per protocol.
type DelayProfile struct {
	ID                int      `json:"id"`
	PreferredProtocol Protocol `json:"preferredProtocol"`
	// Delays are minutes; zero means grab immediately.
	UsenetDelay  int `json:"usenetDelay"`
	TorrentDelay int `json:"torrentDelay"`
	// BypassIfHighestQuality skips the window when the release is already the
	// best allowed quality in its quality profile.
	BypassIfHighestQuality         bool `json:"bypassIfHighestQuality"`
	BypassIfAboveCustomFormatScore bool `json:"bypassIfAboveCustomFormatScore"`
	MinimumCustomFormatScore       int  `json:"minimumCustomFormatScore"`
	// Order breaks ties when several tagged profiles match; smaller wins. The
	// untagged default sits at the maximum order so it always loses to a match.
	Order int      `json:"order"`
	Tags  []string `json:"tags"`
}

// Delay returns the configured window in minutes for the protocol. Unknown
// protocols get the larger of the two windows.
func (p *DelayProfile) Delay(protocol Protocol) int {
	switch protocol {
	case ProtocolUsenet:
		return p.UsenetDelay
	case ProtocolTorrent:
		return p.TorrentDelay
	default:
		return max(p.UsenetDelay, p.TorrentDelay)
	}
}

// IsDefault reports whether this is the untagged fallback profile.
func (p *DelayProfile) IsDefault() bool {
	return p.ID == DefaultDelayProfileID
}

// Validate enforces the default-profile invariants.
func (p *DelayProfile) Validate() error {
	if p.UsenetDelay < 0 || p.TorrentDelay < 0 {
		return &ValidationError{Field: "delay", Reason: "delay windows cannot be negative"}
	}
	if p.IsDefault() && len(p.Tags) > 0 {
		return &ValidationError{Field: "tags", Reason: "the default delay profile cannot be tag scoped"}
	}
	if !p.IsDefault() && p.ID != 0 && len(p.Tags) == 0 {
		return &ValidationError{Field: "tags", Reason: "non-default delay profiles require at least one tag"}
	}
	return nil
}

// DelayProfileStore handles persistence for delay profiles.
type DelayProfileStore struct {
	db dbinterface.Querier
}

// NewDelayProfileStore returns a DelayProfileStore backed by db.
func NewDelayProfileStore(db dbinterface.Querier) *DelayProfileStore {
	return &DelayProfileStore{db: db}
}

const delayProfileColumns = `id, preferred_protocol, usenet_delay, torrent_delay,
	bypass_if_highest_quality, bypass_if_above_custom_format_score,
	minimum_custom_format_score, sort_order, tags`

func scanDelayProfile(scan func(dest ...any) error) (*DelayProfile, error) {
	var p DelayProfile
	var protocol, tagsJSON string
	if err := scan(&p.ID, &protocol, &p.UsenetDelay, &p.TorrentDelay,
		&p.BypassIfHighestQuality, &p.BypassIfAboveCustomFormatScore,
		&p.MinimumCustomFormatScore, &p.Order, &tagsJSON); err != nil {
		return nil, err
	}
	p.PreferredProtocol = ParseProtocol(protocol)
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("delay profile %d: unmarshal tags: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// List returns all delay profiles ordered most specific first (by sort_order),
// which places the untagged default last.
func (s *DelayProfileStore) List(ctx context.Context) ([]*DelayProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+delayProfileColumns+`
		FROM delay_profiles
		ORDER BY sort_order ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*DelayProfile
	for rows.Next() {
		p, err := scanDelayProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns the delay profile with the given id, or sql.ErrNoRows.
func (s *DelayProfileStore) Get(ctx context.Context, id int) (*DelayProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+delayProfileColumns+`
		FROM delay_profiles
		WHERE id = ?
	`, id)
	return scanDelayProfile(row.Scan)
}

// Create inserts a new tagged delay profile. When no order is given the
// profile is placed ahead of the default but behind existing tagged profiles.
func (s *DelayProfileStore) Create(ctx context.Context, p *DelayProfile) (*DelayProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(p.Tags) == 0 {
		return nil, &ValidationError{Field: "tags", Reason: "non-default delay profiles require at least one tag"}
	}

	order := p.Order
	if order == 0 {
		var maxOrder sql.NullInt64
		if err := s.db.QueryRowContext(ctx, `
			SELECT MAX(sort_order) FROM delay_profiles WHERE id != ?
		`, DefaultDelayProfileID).Scan(&maxOrder); err != nil {
			return nil, err
		}
		order = int(maxOrder.Int64) + 1
		if order >= math.MaxInt32 {
			order = math.MaxInt32 - 1
		}
	}

	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO delay_profiles (
			preferred_protocol, usenet_delay, torrent_delay,
			bypass_if_highest_quality, bypass_if_above_custom_format_score,
			minimum_custom_format_score, sort_order, tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(p.PreferredProtocol), p.UsenetDelay, p.TorrentDelay,
		p.BypassIfHighestQuality, p.BypassIfAboveCustomFormatScore,
		p.MinimumCustomFormatScore, order, string(tagsJSON))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing delay profile. The
// default profile keeps its pinned order and empty tag set.
func (s *DelayProfileStore) Update(ctx context.Context, p *DelayProfile) (*DelayProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tags := p.Tags
	order := p.Order
	if p.IsDefault() {
		tags = []string{}
		order = math.MaxInt32
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE delay_profiles
		SET preferred_protocol = ?, usenet_delay = ?, torrent_delay = ?,
			bypass_if_highest_quality = ?, bypass_if_above_custom_format_score = ?,
			minimum_custom_format_score = ?, sort_order = ?, tags = ?
		WHERE id = ?
	`, string(p.PreferredProtocol), p.UsenetDelay, p.TorrentDelay,
		p.BypassIfHighestQuality, p.BypassIfAboveCustomFormatScore,
		p.MinimumCustomFormatScore, order, string(tagsJSON), p.ID)
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

// Delete removes a delay profile. Deleting the untagged default is a conflict.
func (s *DelayProfileStore) Delete(ctx context.Context, id int) error {
	if id == DefaultDelayProfileID {
		return &ConflictError{Name: "default delay profile", Reason: "the default delay profile cannot be deleted"}
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM delay_profiles WHERE id = ?`, id)
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
