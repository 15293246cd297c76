package chunking

import (
	"regexp"
	"strings"
)

// NumberToken replaces every standalone integer or decimal literal.
const NumberToken = "<num>"

var numberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)

// Normalize trims, collapses whitespace runs to one space, masks numbers and
// lowercases. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = numberPattern.ReplaceAllString(text, NumberToken)
	return strings.ToLower(text)
}
