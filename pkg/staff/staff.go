// Package staff classifies crowd-sourced contributor attributions into
// creative roles (writer/artist) versus support roles (translator/editor).
package staff

import (
	"strings"
)

// Edge is one contributor attribution from a search result.
type Edge struct {
	Name        string
	Role        string
	Occupations []string
}

var positiveKeywords = []string{
	"story", "writer", "author", "manga", "art", "illustrator",
	"illustration", "original creator", "creator", "character design",
}

var negativeKeywords = []string{
	"translate", "translator", "translation", "editor",
	"clean", "redraw", "redrawer", "letterer", "proof",
}

// IsCreator is the strict classification pass. Negative keywords always win,
// even when a positive keyword is also present. Unknown roles are rejected.
func IsCreator(e Edge) bool {
	if e.Name == "" {
		return false
	}

	combined := combinedText(e)

	for _, neg := range negativeKeywords {
		if strings.Contains(combined, neg) {
			return false
		}
	}

	for _, pos := range positiveKeywords {
		if strings.Contains(combined, pos) {
			return true
		}
	}

	return false
}

// FilterNames returns the names of creative contributors in edge order.
// When the strict pass accepts nobody, the loose pass runs instead: every
// named edge that does not match a negative keyword is kept, so a record is
// never left without contributors merely because its roles were unrecognized.
func FilterNames(edges []Edge) []string {
	var names []string
	for _, e := range edges {
		if IsCreator(e) {
			names = append(names, e.Name)
		}
	}

	if len(names) > 0 {
		return names
	}

	for _, e := range edges {
		if allowedLoose(e) {
			names = append(names, e.Name)
		}
	}

	return names
}

// allowedLoose keeps any named edge without a negative keyword.
func allowedLoose(e Edge) bool {
	if e.Name == "" {
		return false
	}

	combined := combinedText(e)
	for _, neg := range negativeKeywords {
		if strings.Contains(combined, neg) {
			return false
		}
	}

	return true
}

func combinedText(e Edge) string {
	parts := make([]string, 0, len(e.Occupations)+1)
	parts = append(parts, e.Occupations...)
	parts = append(parts, e.Role)
	return strings.ToLower(strings.Join(parts, " "))
}
