// Package extractor turns uploaded bytes into plain text. Every failure is
// returned as a human-readable reason inside domain.Extraction.
package extractor

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	msgDecodeFailure   = "Unable to decode text file. The file may be binary or use an unsupported encoding."
	msgPDFEncrypted    = "PDF is encrypted and cannot be processed without a password."
	msgPDFNoPages      = "PDF has no pages"
	msgPDFNoText       = "PDF appears to contain no extractable text. The document may be scanned or contain only images."
	msgPDFNoHeader     = "Not a valid PDF file. Missing PDF header."
	msgPDFCorrupted    = "The PDF file appears to be corrupted or in an unsupported format."
	msgDOCXNoText      = "DOCX document appears to contain no text."
	msgXLSXNoText      = "XLSX workbook appears to contain no text."
	defaultMinScrape   = 100
	unsupportedMessage = "Unsupported content type: %s"
)

type Options struct {
	// MinScrapedChars is the amount of text the raw-byte PDF scrape must
	// recover before it is accepted.
	MinScrapedChars int
	Logger          *slog.Logger
}

type Extractor struct {
	minScraped int
	logger     *slog.Logger
	pdfChain   []pdfStrategy
}

func New(opts Options) *Extractor {
	minScraped := opts.MinScrapedChars
	if minScraped <= 0 {
		minScraped = defaultMinScrape
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		minScraped: minScraped,
		logger:     logger.With("component", "extractor"),
	}
	e.pdfChain = []pdfStrategy{
		{name: "structured", run: e.extractPDFStructured},
		{name: "content-stream", run: e.extractPDFContentStreams},
		{name: "raw-scrape", run: e.scrapePDFText},
	}
	return e
}

func (e *Extractor) Extract(content []byte, contentType, filename string) domain.Extraction {
	result := domain.Extraction{
		Filename:    filename,
		ContentType: contentType,
		Size:        len(content),
	}

	var text, reason string
	switch contentType {
	case domain.ContentTypePlainText:
		text, reason = e.extractPlainText(content)
	case domain.ContentTypePDF:
		text, reason, result.Strategy = e.extractPDF(content, filename)
	case domain.ContentTypeDOCX:
		text, reason = e.extractDOCX(content)
	case domain.ContentTypeXLSX:
		text, reason = e.extractXLSX(content)
	default:
		reason = fmt.Sprintf(unsupportedMessage, contentType)
	}

	if text == "" {
		if reason == "" {
			reason = "No text could be extracted from the file."
		}
		e.logger.Warn("extraction_failed",
			"filename", filename,
			"content_type", contentType,
			"size", len(content),
			"reason", reason,
		)
		result.Error = reason
		return result
	}

	result.Text = text
	e.logger.Debug("extraction_succeeded",
		"filename", filename,
		"content_type", contentType,
		"chars", len(text),
		"strategy", result.Strategy,
	)
	return result
}
