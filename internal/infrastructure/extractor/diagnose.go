package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DiagnosePDF reports header, structure and first-page checks for a PDF.
// It never fails; problems are recorded in the returned checks.
func (e *Extractor) DiagnosePDF(content []byte, filename string) domain.PDFDiagnostic {
	diag := domain.PDFDiagnostic{
		Filename: filename,
		FileSize: len(content),
	}

	diag.Checks.HasPDFHeader = bytes.HasPrefix(content, pdfMagic)
	if diag.Checks.HasPDFHeader && len(content) >= 8 {
		diag.Checks.PDFVersion = strings.ToValidUTF8(string(content[5:8]), "")
	}

	e.inspectStructure(content, &diag.Checks)
	return diag
}

func (e *Extractor) inspectStructure(content []byte, checks *domain.PDFChecks) {
	defer func() {
		if r := recover(); r != nil {
			checks.Read = fmt.Sprintf("unknown error: %v", r)
		}
	}()

	reader, err := openPDF(content)
	if err != nil {
		checks.Read = fmt.Sprintf("failed: %v", err)
		if isEncryptionError(err, content) {
			encrypted := true
			checks.IsEncrypted = &encrypted
		}
		return
	}
	checks.Read = "success"

	encrypted := isEncrypted(reader)
	checks.IsEncrypted = &encrypted
	pages := reader.NumPage()
	checks.PageCount = &pages
	if pages == 0 {
		return
	}

	text, err := readPageText(reader, 1)
	if err != nil {
		checks.FirstPageError = err.Error()
		return
	}
	hasText := strings.TrimSpace(text) != ""
	length := len([]rune(text))
	checks.FirstPageHasText = &hasText
	checks.FirstPageTextLength = &length
}
