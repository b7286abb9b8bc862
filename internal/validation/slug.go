package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Dotless ı has no decomposition, so it is mapped before marks are stripped.
var foldToASCII = transform.Chain(
	runes.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}),
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify lowercases name with Turkish casing rules, folds accented letters
// to ASCII and joins the remaining alphanumeric runs with dashes. The result
// may be empty.
func Slugify(name string) string {
	s := lower.String(strings.TrimSpace(name))
	folded, _, err := transform.String(foldToASCII, s)
	if err != nil {
		folded = s
	}
	return strings.Trim(nonSlug.ReplaceAllString(folded, "-"), "-")
}
