package extractor

import "unicode/utf8"

func (e *Extractor) extractPlainText(content []byte) (string, string) {
	if !utf8.Valid(content) {
		return "", msgDecodeFailure
	}
	if len(content) == 0 {
		return "", "Text file is empty."
	}
	return string(content), ""
}
