// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"regexp"
	"strings"

	"github.com/moistari/rls"

	"github.com/autobrr/grabarr/internal/quality"
)

// separatorReplacer replaces common release name separators with spaces so
// tokens like "[FLAC-24bit]" and "(flac 24 bit)" tokenize the same way.
var separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ", "[", " ", "]", " ", "(", " ", ")", " ", "{", " ", "}", " ")

var whitespaceCollapser = regexp.MustCompile(`\s+`)

func tokenize(title string) []string {
	s := strings.ToLower(title)
	s = separatorReplacer.Replace(s)
	s = whitespaceCollapser.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// DetectQuality maps a parsed release to the catalog quality its title
// advertises. Detection is token based: parsed audio fields are considered
// first, then raw title tokens. Unrecognized titles resolve to Unknown.
func DetectQuality(release *rls.Release, title string) quality.Quality {
	tokens := make(map[string]struct{})
	for _, a := range release.Audio {
		for _, tok := range tokenize(a) {
			tokens[tok] = struct{}{}
		}
	}
	for _, tok := range tokenize(title) {
		tokens[tok] = struct{}{}
	}

	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := tokens[k]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case has("flac") && has("24bit", "24", "hi", "hires"):
		return quality.FLAC_24
	case has("flac"), has("lossless") && !has("alac"):
		return quality.FLAC
	case has("alac"):
		return quality.ALAC
	case has("wma"):
		return quality.WMA
	}

	if has("vorbis", "ogg") {
		switch {
		case has("q10"):
			return quality.VORBIS10
		case has("q9"):
			return quality.VORBIS9
		case has("q8"):
			return quality.VORBIS8
		case has("q7"):
			return quality.VORBIS7
		case has("q6"):
			return quality.VORBIS6
		default:
			return quality.VORBIS5
		}
	}

	if has("aac", "m4a") {
		switch {
		case has("320"):
			return quality.AAC_320
		case has("256"):
			return quality.AAC_256
		case has("192"):
			return quality.AAC_192
		default:
			return quality.AAC_VBR
		}
	}

	if has("mp3") || has("320", "256", "224", "192", "v0", "v2", "vbr") {
		switch {
		case has("v0"):
			return quality.MP3_VBR
		case has("v2"):
			return quality.MP3_VBR2
		case has("320"):
			return quality.MP3_320
		case has("256"):
			return quality.MP3_256
		case has("224"):
			return quality.MP3_224
		case has("192"):
			return quality.MP3_192
		case has("160"):
			return quality.MP3_160
		case has("128"):
			return quality.MP3_128
		case has("112"):
			return quality.MP3_112
		case has("96"):
			return quality.MP3_096
		case has("vbr"), has("mp3"):
			// Bitrate not advertised; assume a decent VBR encode.
			return quality.MP3_VBR
		}
	}

	return quality.Unknown
}
