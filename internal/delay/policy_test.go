// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package delay_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/grabarr/internal/delay"
	"github.com/autobrr/grabarr/internal/models"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	def := &models.DelayProfile{ID: models.DefaultDelayProfileID, Order: math.MaxInt32}
	vinyl := &models.DelayProfile{ID: 2, Order: 1, Tags: []string{"vinyl"}}
	boxset := &models.DelayProfile{ID: 3, Order: 2, Tags: []string{"box-set", "anniversary"}}
	profiles := []*models.DelayProfile{vinyl, boxset, def}

	tests := []struct {
		name string
		tags []string
		want *models.DelayProfile
	}{
		{"no tags falls back to default", nil, def},
		{"unmatched tags fall back to default", []string{"live"}, def},
		{"single match", []string{"box-set"}, boxset},
		{"first by order wins", []string{"box-set", "vinyl"}, vinyl},
		{"case-insensitive match", []string{"VINYL"}, vinyl},
		{"whitespace tolerated", []string{"  vinyl  "}, vinyl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Same(t, tt.want, delay.Resolve(profiles, tt.tags))
		})
	}
}

func TestResolveNoDefault(t *testing.T) {
	t.Parallel()

	profiles := []*models.DelayProfile{{ID: 2, Tags: []string{"vinyl"}}}
	assert.Nil(t, delay.Resolve(profiles, []string{"live"}))
}

func TestShouldDelay(t *testing.T) {
	t.Parallel()

	torrent := &models.Release{Protocol: models.ProtocolTorrent}

	tests := []struct {
		name        string
		profile     *models.DelayProfile
		formatScore int
		isHighest   bool
		want        delay.Verdict
	}{
		{
			name: "nil profile bypasses",
			want: delay.Verdict{Bypass: true},
		},
		{
			name:    "zero window grabs immediately",
			profile: &models.DelayProfile{},
			want:    delay.Verdict{Window: 0},
		},
		{
			name:    "torrent window applies",
			profile: &models.DelayProfile{TorrentDelay: 30, UsenetDelay: 5},
			want:    delay.Verdict{Window: 30 * time.Minute},
		},
		{
			name:      "highest quality bypass",
			profile:   &models.DelayProfile{TorrentDelay: 30, BypassIfHighestQuality: true},
			isHighest: true,
			want:      delay.Verdict{Bypass: true},
		},
		{
			name:    "highest quality bypass requires highest",
			profile: &models.DelayProfile{TorrentDelay: 30, BypassIfHighestQuality: true},
			want:    delay.Verdict{Window: 30 * time.Minute},
		},
		{
			name: "score above threshold bypasses",
			profile: &models.DelayProfile{
				TorrentDelay:                   30,
				BypassIfAboveCustomFormatScore: true,
				MinimumCustomFormatScore:       5,
			},
			formatScore: 6,
			want:        delay.Verdict{Bypass: true},
		},
		{
			name: "score at threshold waits",
			profile: &models.DelayProfile{
				TorrentDelay:                   30,
				BypassIfAboveCustomFormatScore: true,
				MinimumCustomFormatScore:       5,
			},
			formatScore: 5,
			want:        delay.Verdict{Window: 30 * time.Minute},
		},
		{
			name:        "score bypass disabled",
			profile:     &models.DelayProfile{TorrentDelay: 30, MinimumCustomFormatScore: 5},
			formatScore: 100,
			want:        delay.Verdict{Window: 30 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := delay.ShouldDelay(tt.profile, torrent, tt.formatScore, tt.isHighest)
			assert.Equal(t, tt.want, got)
		})
	}
}
