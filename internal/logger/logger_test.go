// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.TraceLevel, parseLevel("TRACE"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("INFO"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("Warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
