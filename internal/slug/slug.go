// Package slug derives URL-safe identifiers from record titles and keeps them
// unique among sibling records through an injected uniqueness oracle.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed matches anything that is not a letter, digit, underscore, space or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]+`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-{2,}`)
)

// Normalize converts a title into a slug candidate.
// Example: "Toyota Camry!!" -> "toyota-camry"
//
// The result only contains lowercase ASCII letters, digits, underscores and
// single hyphens, and never starts or ends with a hyphen. A title made only of
// punctuation normalizes to the empty string.
func Normalize(title string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, title)
	s = strings.ToLower(strings.TrimSpace(s))
	s = foldDiacritics(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether value is already in normalized form.
func Valid(value string) bool {
	return value != "" && Normalize(value) == value
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
