// Package titlekey turns noisy folder names into stable cache lookup keys.
package titlekey

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	yearToken         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	trailingYearToken = regexp.MustCompile(`\b(19|20)\d{2}\b$`)
	bracketChars      = regexp.MustCompile(`[\[\]\(\)\{\}_]`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a folder title for cache lookups and exact-match
// detection. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
// Bracket and underscore characters become spaces before year tokens are
// removed, so a year glued to an underscore is word-bounded in one pass.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = bracketChars.ReplaceAllString(s, " ")
	s = yearToken.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// GuessFolderTitle returns the display title guess for a folder: the final
// path segment with a trailing 4-digit year token removed.
func GuessFolderTitle(folderPath string) string {
	name := filepath.Base(folderPath)
	return strings.TrimSpace(trailingYearToken.ReplaceAllString(name, ""))
}
