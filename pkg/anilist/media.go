package anilist

import (
	"strings"
)

// Title preference values accepted in config and flags.
const (
	PreferRomaji  = "romaji"
	PreferEnglish = "english"
)

// Media is one resolved manga record. The JSON tags are the on-disk cache
// format, shared with earlier versions of the tool, so they must not change.
type Media struct {
	ID           int      `json:"id"`
	TitleRomaji  string   `json:"title_romaji,omitempty"`
	TitleEnglish string   `json:"title_english,omitempty"`
	TitleNative  string   `json:"title_native,omitempty"`
	Year         int      `json:"year,omitempty"`
	Description  string   `json:"description,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	CoverLarge   string   `json:"cover_large,omitempty"`
	CoverXL      string   `json:"cover_xl,omitempty"`
	Staff        []string `json:"staff"`
}

// PreferredTitle resolves the display title for a preference, falling back
// through the remaining title variants in a fixed order.
func (m Media) PreferredTitle(prefer string) string {
	if prefer == PreferEnglish {
		return firstNonEmpty(m.TitleEnglish, m.TitleRomaji, m.TitleNative)
	}
	return firstNonEmpty(m.TitleRomaji, m.TitleEnglish, m.TitleNative)
}

// SeriesTitle always prefers romaji, independent of the title preference.
func (m Media) SeriesTitle() string {
	return firstNonEmpty(m.TitleRomaji, m.TitleEnglish, m.TitleNative)
}

// PrimaryTitle is the title used for exact-match detection against a
// normalized folder key.
func (m Media) PrimaryTitle() string {
	return firstNonEmpty(m.TitleRomaji, m.TitleEnglish)
}

// DisplayTitle is a human-facing label for logs and candidate listings.
func (m Media) DisplayTitle() string {
	if t := m.PrimaryTitle(); t != "" {
		return t
	}
	return "Unknown"
}

// CoverURL picks the preferred cover image URL, or "" when none exists.
func (m Media) CoverURL() string {
	return firstNonEmpty(m.CoverLarge, m.CoverXL)
}

// StaffSummary joins contributor names for display.
func (m Media) StaffSummary() string {
	return strings.Join(m.Staff, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
