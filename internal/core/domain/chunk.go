package domain

// TextChunk is one sentence-respecting segment of normalized text.
type TextChunk struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}
