package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var abbreviations = map[string]struct{}{
	"mr.": {}, "mrs.": {}, "ms.": {}, "dr.": {}, "prof.": {}, "sr.": {}, "jr.": {},
	"st.": {}, "vs.": {}, "e.g.": {}, "i.e.": {}, "inc.": {}, "ltd.": {}, "co.": {},
	"corp.": {}, "no.": {}, "fig.": {}, "al.": {}, "approx.": {}, "dept.": {},
}

// splitSentences returns the sentences of text, or nil when text holds no
// sentence boundary at all.
func splitSentences(text string) []string {
	var out []string
	start := 0
	found := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminal(r) {
			continue
		}

		end := i
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(next) && !isCloser(next) {
				break
			}
			end += n
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		if r == '.' && endsWithAbbreviation(text[start:i]) {
			i = end
			continue
		}

		found = true
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
		i = end
	}

	if !found {
		return nil
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	default:
		return false
	}
}

// endsWithAbbreviation reports whether the token ending at the final '.'
// of span is a known abbreviation or a single-letter initial.
func endsWithAbbreviation(span string) bool {
	token := span
	if idx := strings.LastIndexFunc(span, unicode.IsSpace); idx >= 0 {
		token = span[idx+1:]
	}
	token = strings.ToLower(strings.TrimLeft(token, "(\"'"))
	if _, ok := abbreviations[token]; ok {
		return true
	}
	letters := strings.TrimSuffix(token, ".")
	if utf8.RuneCountInString(letters) == 1 {
		r, _ := utf8.DecodeRuneInString(letters)
		return unicode.IsLetter(r)
	}
	return false
}
