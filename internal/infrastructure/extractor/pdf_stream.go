package extractor

import (
	"strings"
	"unicode"
)

// decodeContentStream pulls the operands of the text showing operators
// (Tj, TJ, ' and ") out of a decompressed page content stream. Positioning
// operators become whitespace so words from separate runs do not fuse.
func decodeContentStream(data []byte) string {
	var (
		sb      strings.Builder
		pending []string
	)
	lx := &streamLexer{data: data}
	for {
		tok, kind := lx.next()
		switch kind {
		case tokEOF:
			return strings.TrimSpace(sb.String())
		case tokString:
			pending = append(pending, tok)
		case tokArrayEnd, tokArrayStart, tokOther:
			// operands of TJ arrays accumulate in pending
		case tokOperator:
			switch tok {
			case "Tj", "TJ":
				for _, s := range pending {
					sb.WriteString(s)
				}
			case "'", "\"":
				sb.WriteByte('\n')
				for _, s := range pending {
					sb.WriteString(s)
				}
			case "Td", "TD", "Tm":
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
			case "T*", "ET":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
			pending = pending[:0]
		}
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOperator
	tokArrayStart
	tokArrayEnd
	tokOther
)

type streamLexer struct {
	data []byte
	pos  int
}

func (l *streamLexer) next() (string, tokenKind) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return "", tokEOF
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		return l.literalString(), tokString
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return "<<", tokOther
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return ">>", tokOther
	case c == '<':
		return l.hexString(), tokString
	case c == '[':
		l.pos++
		return "[", tokArrayStart
	case c == ']':
		l.pos++
		return "]", tokArrayEnd
	case c == '/':
		l.pos++
		return l.word(), tokOther
	case c == '\'' || c == '"':
		l.pos++
		return string(c), tokOperator
	case isNumberStart(c):
		return l.word(), tokOther
	default:
		w := l.word()
		if w == "" {
			l.pos++
			return string(c), tokOther
		}
		return w, tokOperator
	}
}

func (l *streamLexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *streamLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isPDFSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *streamLexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literalString reads a balanced (...) string, resolving escapes.
func (l *streamLexer) literalString() string {
	l.pos++ // opening paren
	var (
		out   []byte
		depth = 1
	)
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return decodeTextBytes(out)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.peek(0) == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeTextBytes(out)
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return decodeTextBytes(out)
}

func (l *streamLexer) hexString() string {
	l.pos++ // opening angle
	var (
		out  []byte
		hi   = -1
		done bool
	)
	for l.pos < len(l.data) && !done {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			done = true
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if hi < 0 {
			hi = v
			continue
		}
		out = append(out, byte(hi<<4|v))
		hi = -1
	}
	if hi >= 0 {
		out = append(out, byte(hi<<4))
	}
	return decodeTextBytes(out)
}

// decodeTextBytes interprets a string operand. UTF-16BE strings carry a BOM;
// everything else is treated as a single-byte Latin-1 encoding and stripped
// of control characters.
func decodeTextBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		var sb strings.Builder
		for i := 2; i+1 < len(b); i += 2 {
			r := rune(b[i])<<8 | rune(b[i+1])
			if unicode.IsPrint(r) || unicode.IsSpace(r) {
				sb.WriteRune(r)
			}
		}
		return sb.String()
	}
	var sb strings.Builder
	for _, c := range b {
		r := rune(c)
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}
