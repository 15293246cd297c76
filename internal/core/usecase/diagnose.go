package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type DiagnoseUseCase struct {
	inspector ports.PDFInspector
	extractor ports.TextExtractor
}

func NewDiagnoseUseCase(inspector ports.PDFInspector, extractor ports.TextExtractor) *DiagnoseUseCase {
	return &DiagnoseUseCase{inspector: inspector, extractor: extractor}
}

// Diagnose accepts a file declared as PDF or named *.pdf and reports both
// its structure and the outcome of a full extraction attempt.
func (uc *DiagnoseUseCase) Diagnose(_ context.Context, filename, contentType string, content []byte) (*domain.PDFDiagnostic, error) {
	if normalizeContentType(contentType) != domain.ContentTypePDF &&
		!strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidFileType,
			"Only PDF files can be diagnosed with this endpoint", map[string]any{"content_type": contentType})
	}

	diag := uc.inspector.DiagnosePDF(content, filename)
	extraction := uc.extractor.Extract(content, domain.ContentTypePDF, filename)
	diag.Result = &domain.ExtractionReport{
		Success:    extraction.Text != "",
		Error:      extraction.Error,
		TextLength: utf8.RuneCountInString(extraction.Text),
		Strategy:   extraction.Strategy,
	}
	return &diag, nil
}
