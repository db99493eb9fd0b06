// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserCachesResults(t *testing.T) {
	t.Parallel()

	p := NewParser(time.Minute)

	first := p.Parse("Artist - Album (2024) [FLAC]")
	second := p.Parse("Artist - Album (2024) [FLAC]")

	assert.Same(t, first, second, "repeated parses within the TTL share one result")
}

func TestParserCacheExpiry(t *testing.T) {
	t.Parallel()

	p := NewParser(time.Minute)

	current := time.Now()
	p.now = func() time.Time { return current }

	first := p.Parse("Artist - Album (2024) [FLAC]")

	current = current.Add(2 * time.Minute)
	second := p.Parse("Artist - Album (2024) [FLAC]")

	assert.NotSame(t, first, second, "expired entries are re-parsed")
}

func TestParserExtractsFields(t *testing.T) {
	t.Parallel()

	p := NewParser(time.Minute)

	r := p.Parse("Aphex Twin - Selected Ambient Works 85-92 (1992) [FLAC]-GRP")
	require.NotNil(t, r)
	assert.Equal(t, 1992, r.Year)
}

func TestParserFloorsNonPositiveTTL(t *testing.T) {
	t.Parallel()

	p := NewParser(0)
	assert.Equal(t, time.Minute, p.ttl)

	p = NewParser(-time.Second)
	assert.Equal(t, time.Minute, p.ttl)
}

func TestParseSurvivesCleanupOfOwnEntry(t *testing.T) {
	t.Parallel()

	// Entries that are already expired when the cleanup runs get deleted;
	// the parse result must not depend on its cache entry surviving.
	p := NewParser(time.Minute)
	p.ttl = -time.Second
	for i := 0; i < 4100; i++ {
		r := p.Parse("Artist - Album " + strconv.Itoa(i) + " (2024) [FLAC]")
		require.NotNil(t, r)
	}
}
