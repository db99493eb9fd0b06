// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases wraps moistari/rls release-name parsing with a small
// result cache and the audio quality detection the qualification core needs.
package releases

import (
	"sync"
	"time"

	"github.com/moistari/rls"
)

type cachedRelease struct {
	release *rls.Release
	expires time.Time
}

// Parser parses release titles, caching results for the configured TTL.
// Parsing the same title repeatedly is common during evaluation bursts.
type Parser struct {
	mu    sync.Mutex
	cache map[string]cachedRelease
	ttl   time.Duration
	now   func() time.Time
}

// NewParser returns a parser whose cache entries expire after ttl. A
// non-positive ttl is floored so entries never expire on insert.
func NewParser(ttl time.Duration) *Parser {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Parser{
		cache: make(map[string]cachedRelease),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Parse returns the parsed release for the title. The returned value is
// shared between callers and must not be mutated.
func (p *Parser) Parse(title string) *rls.Release {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if entry, ok := p.cache[title]; ok && entry.expires.After(now) {
		return entry.release
	}

	r := rls.ParseString(title)
	p.cache[title] = cachedRelease{release: &r, expires: now.Add(p.ttl)}

	// Opportunistic cleanup keeps the cache bounded without a background
	// goroutine; bursts share a small working set of titles.
	if len(p.cache) > 4096 {
		for key, entry := range p.cache {
			if !entry.expires.After(now) {
				delete(p.cache, key)
			}
		}
	}

	return &r
}
