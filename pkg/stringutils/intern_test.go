// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"testing"
)

func TestIntern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "simple string", input: "vinyl", want: "vinyl"},
		{name: "preserves case", input: "Vinyl", want: "Vinyl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intern(tt.input); got != tt.want {
				t.Errorf("Intern(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInternLower(t *testing.T) {
	if got := InternLower("ViNyL"); got != "vinyl" {
		t.Errorf("InternLower returned %q", got)
	}
	if got := InternLower(""); got != "" {
		t.Errorf("InternLower empty returned %q", got)
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Vinyl ", "vinyl"},
		{"vinyl", "vinyl"},
		{"  ", ""},
		{"Hi-Res\t", "hi-res"},
	}

	for _, tt := range tests {
		if got := NormalizeTag(tt.input); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
