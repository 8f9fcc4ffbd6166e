package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

var urlToken = regexp.MustCompile(`[a-z][a-z0-9+.\-]*://\S+`)

// CleanText lowercases text, drops URLs, turns every character that is not
// a letter, digit, underscore or whitespace into a space, and collapses
// runs of whitespace.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = urlToken.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(text), " ")
}
