// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package quality defines the static catalog of known audio encoding qualities.
// The catalog is ordered worst to best by group weight; qualities sharing a
// weight belong to the same named group and are treated as equivalent for
// cutoff purposes.
package quality

// Quality is one known encoding. Values are immutable; the catalog below is
// the only source of Quality values in the application.
type Quality struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	GroupWeight int    `json:"-"`
	GroupName   string `json:"-"`
}

var (
	Unknown  = Quality{ID: 0, Name: "Unknown", GroupWeight: 1, GroupName: "Unknown"}
	MP3_008  = Quality{ID: 1, Name: "MP3-8", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_016  = Quality{ID: 2, Name: "MP3-16", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_024  = Quality{ID: 3, Name: "MP3-24", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_032  = Quality{ID: 4, Name: "MP3-32", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_040  = Quality{ID: 5, Name: "MP3-40", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_048  = Quality{ID: 6, Name: "MP3-48", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_056  = Quality{ID: 7, Name: "MP3-56", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_064  = Quality{ID: 8, Name: "MP3-64", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_080  = Quality{ID: 9, Name: "MP3-80", GroupWeight: 2, GroupName: "Trash Quality Lossy"}
	MP3_096  = Quality{ID: 10, Name: "MP3-96", GroupWeight: 3, GroupName: "Poor Quality Lossy"}
	MP3_112  = Quality{ID: 11, Name: "MP3-112", GroupWeight: 3, GroupName: "Poor Quality Lossy"}
	MP3_128  = Quality{ID: 12, Name: "MP3-128", GroupWeight: 3, GroupName: "Poor Quality Lossy"}
	MP3_160  = Quality{ID: 13, Name: "MP3-160", GroupWeight: 4, GroupName: "Low Quality Lossy"}
	MP3_192  = Quality{ID: 14, Name: "MP3-192", GroupWeight: 5, GroupName: "Mid Quality Lossy"}
	MP3_VBR2 = Quality{ID: 15, Name: "MP3-VBR-V2", GroupWeight: 5, GroupName: "Mid Quality Lossy"}
	AAC_192  = Quality{ID: 16, Name: "AAC-192", GroupWeight: 5, GroupName: "Mid Quality Lossy"}
	WMA      = Quality{ID: 17, Name: "WMA", GroupWeight: 5, GroupName: "Mid Quality Lossy"}
	VORBIS5  = Quality{ID: 18, Name: "VORBIS-Q5", GroupWeight: 5, GroupName: "Mid Quality Lossy"}
	MP3_224  = Quality{ID: 19, Name: "MP3-224", GroupWeight: 6, GroupName: "High Quality Lossy"}
	MP3_256  = Quality{ID: 20, Name: "MP3-256", GroupWeight: 6, GroupName: "High Quality Lossy"}
	VORBIS6  = Quality{ID: 21, Name: "VORBIS-Q6", GroupWeight: 6, GroupName: "High Quality Lossy"}
	AAC_256  = Quality{ID: 22, Name: "AAC-256", GroupWeight: 6, GroupName: "High Quality Lossy"}
	MP3_VBR  = Quality{ID: 23, Name: "MP3-VBR-V0", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	MP3_320  = Quality{ID: 24, Name: "MP3-320", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	VORBIS7  = Quality{ID: 25, Name: "VORBIS-Q7", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	AAC_320  = Quality{ID: 26, Name: "AAC-320", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	AAC_VBR  = Quality{ID: 27, Name: "AAC-VBR", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	VORBIS8  = Quality{ID: 28, Name: "VORBIS-Q8", GroupWeight: 7, GroupName: "Ultra Quality Lossy"}
	VORBIS9  = Quality{ID: 29, Name: "VORBIS-Q9", GroupWeight: 8, GroupName: "Vorbis High"}
	VORBIS10 = Quality{ID: 30, Name: "VORBIS-Q10", GroupWeight: 9, GroupName: "Vorbis Ultra"}
	FLAC     = Quality{ID: 31, Name: "FLAC", GroupWeight: 10, GroupName: "Lossless"}
	ALAC     = Quality{ID: 32, Name: "ALAC", GroupWeight: 10, GroupName: "Lossless"}
	FLAC_24  = Quality{ID: 33, Name: "FLAC 24bit", GroupWeight: 11, GroupName: "Lossless 24bit"}
)

// Catalog lists every known quality ordered by group weight, worst first.
// Iteration over Catalog is the canonical rank order used when building
// profile items.
var Catalog = []Quality{
	Unknown,
	MP3_008, MP3_016, MP3_024, MP3_032, MP3_040, MP3_048, MP3_056, MP3_064, MP3_080,
	MP3_096, MP3_112, MP3_128,
	MP3_160,
	MP3_192, MP3_VBR2, AAC_192, WMA, VORBIS5,
	MP3_224, MP3_256, VORBIS6, AAC_256,
	MP3_VBR, MP3_320, VORBIS7, AAC_320, AAC_VBR, VORBIS8,
	VORBIS9,
	VORBIS10,
	FLAC, ALAC,
	FLAC_24,
}

var byID = func() map[int]Quality {
	m := make(map[int]Quality, len(Catalog))
	for _, q := range Catalog {
		m[q.ID] = q
	}
	return m
}()

// FindByID returns the catalog quality with the given id.
// Unknown ids resolve to the Unknown quality.
func FindByID(id int) Quality {
	if q, ok := byID[id]; ok {
		return q
	}
	return Unknown
}

// FindByName performs a case-sensitive lookup by catalog name.
func FindByName(name string) (Quality, bool) {
	for _, q := range Catalog {
		if q.Name == name {
			return q, true
		}
	}
	return Quality{}, false
}
