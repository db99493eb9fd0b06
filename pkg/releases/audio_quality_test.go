// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/grabarr/internal/quality"
)

func TestDetectQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  quality.Quality
	}{
		{"Artist - Album (2024) [FLAC 24bit]", quality.FLAC_24},
		{"Artist - Album (2024) [FLAC-24BIT-WEB]", quality.FLAC_24},
		{"Artist - Album (2024) [FLAC]", quality.FLAC},
		{"Artist - Album (2024) Lossless", quality.FLAC},
		{"Artist - Album (2024) [ALAC]", quality.ALAC},
		{"Artist - Album (2024) [WMA]", quality.WMA},
		{"Artist - Album (2024) [OGG Vorbis q10]", quality.VORBIS10},
		{"Artist - Album (2024) [OGG Vorbis q8]", quality.VORBIS8},
		{"Artist - Album (2024) [OGG Vorbis]", quality.VORBIS5},
		{"Artist - Album (2024) [AAC 320]", quality.AAC_320},
		{"Artist - Album (2024) [AAC 256]", quality.AAC_256},
		{"Artist - Album (2024) [M4A]", quality.AAC_VBR},
		{"Artist - Album (2024) [MP3 V0]", quality.MP3_VBR},
		{"Artist - Album (2024) [MP3 V2]", quality.MP3_VBR2},
		{"Artist - Album (2024) [MP3 320]", quality.MP3_320},
		{"Artist.Album.2024.320.WEB", quality.MP3_320},
		{"Artist - Album (2024) [MP3 256]", quality.MP3_256},
		{"Artist - Album (2024) [MP3 192]", quality.MP3_192},
		{"Artist - Album (2024) [MP3]", quality.MP3_VBR},
		{"Artist - Album (2024)", quality.Unknown},
	}

	p := NewParser(time.Minute)
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()

			got := DetectQuality(p.Parse(tt.title), tt.title)
			assert.Equal(t, tt.want.Name, got.Name)
		})
	}
}
