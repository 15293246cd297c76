package chunking

import (
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const DefaultMaxChunkChars = 512

type Splitter struct {
	MaxChars int
}

func NewSplitter(maxChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	return &Splitter{MaxChars: maxChars}
}

func (s *Splitter) Normalize(text string) string {
	return Normalize(text)
}

// Split returns the chunks of text with the splitter's budget.
func (s *Splitter) Split(text string) []string {
	var out []string
	for chunk := range s.Chunks(text, s.MaxChars) {
		out = append(out, chunk.Text)
	}
	return out
}

// Chunks greedily packs sentences into chunks of at most maxChars runes
// (join spaces included). A sentence longer than the budget becomes its own
// chunk. Text without any sentence boundary is sliced every maxChars runes.
// The sequence is computed on iteration and can be ranged over repeatedly.
func (s *Splitter) Chunks(text string, maxChars int) iter.Seq[domain.TextChunk] {
	if maxChars <= 0 {
		maxChars = s.MaxChars
	}
	return func(yield func(domain.TextChunk) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		sentences := splitSentences(text)
		if len(sentences) == 0 {
			fixedWidth(text, maxChars, yield)
			return
		}

		position := 0
		var current strings.Builder
		currentLen := 0
		flush := func() bool {
			if currentLen == 0 {
				return true
			}
			chunk := domain.TextChunk{Text: current.String(), Position: position}
			position++
			current.Reset()
			currentLen = 0
			return yield(chunk)
		}

		for _, sentence := range sentences {
			n := utf8.RuneCountInString(sentence)
			if currentLen > 0 && currentLen+1+n > maxChars {
				if !flush() {
					return
				}
			}
			if currentLen > 0 {
				current.WriteByte(' ')
				currentLen++
			}
			current.WriteString(sentence)
			currentLen += n
		}
		flush()
	}
}

func fixedWidth(text string, width int, yield func(domain.TextChunk) bool) {
	runes := []rune(text)
	for position, start := 0, 0; start < len(runes); position, start = position+1, start+width {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		if !yield(domain.TextChunk{Text: string(runes[start:end]), Position: position}) {
			return
		}
	}
}
