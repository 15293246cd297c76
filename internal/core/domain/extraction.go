package domain

import (
	"path/filepath"
	"strings"
)

const (
	ContentTypePlainText = "text/plain"
	ContentTypePDF       = "application/pdf"
	ContentTypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeMSWord    = "application/msword"
)

// supportedContentTypes maps every accepted MIME type to the file
// extensions allowed for it.
var supportedContentTypes = map[string][]string{
	ContentTypePlainText: {".txt"},
	ContentTypePDF:       {".pdf"},
	ContentTypeDOCX:      {".docx"},
	ContentTypeXLSX:      {".xlsx"},
	ContentTypeMSWord:    {".doc"},
}

func SupportedContentTypes() []string {
	return []string{
		ContentTypePlainText,
		ContentTypePDF,
		ContentTypeDOCX,
		ContentTypeXLSX,
		ContentTypeMSWord,
	}
}

func IsSupportedContentType(contentType string) bool {
	_, ok := supportedContentTypes[contentType]
	return ok
}

func ExpectedExtensions(contentType string) []string {
	return append([]string(nil), supportedContentTypes[contentType]...)
}

// FileExtension returns the lowercased extension including the dot, or "".
func FileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func ExtensionMatches(contentType, filename string) bool {
	ext := FileExtension(filename)
	for _, allowed := range supportedContentTypes[contentType] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Extraction is the plain-text representation of an upload. Error is set
// only when no text could be recovered.
type Extraction struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Text        string `json:"-"`
	Error       string `json:"error,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
}

func (e Extraction) Failed() bool {
	return e.Text == "" && e.Error != ""
}

// PDFDiagnostic is the operator troubleshooting report for a PDF upload.
type PDFDiagnostic struct {
	Filename string            `json:"filename"`
	FileSize int               `json:"file_size"`
	Checks   PDFChecks         `json:"checks"`
	Result   *ExtractionReport `json:"text_extraction,omitempty"`
}

type PDFChecks struct {
	HasPDFHeader        bool   `json:"has_pdf_header"`
	PDFVersion          string `json:"pdf_version,omitempty"`
	Read                string `json:"read"`
	IsEncrypted         *bool  `json:"is_encrypted,omitempty"`
	PageCount           *int   `json:"page_count,omitempty"`
	FirstPageHasText    *bool  `json:"first_page_has_text,omitempty"`
	FirstPageTextLength *int   `json:"first_page_text_length,omitempty"`
	FirstPageError      string `json:"first_page_error,omitempty"`
}

type ExtractionReport struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	TextLength int    `json:"text_length"`
	Strategy   string `json:"strategy,omitempty"`
}

// ContentTypeForFilename infers a supported content type from the file
// extension.
func ContentTypeForFilename(filename string) (string, bool) {
	ext := FileExtension(filename)
	for _, contentType := range SupportedContentTypes() {
		for _, allowed := range supportedContentTypes[contentType] {
			if ext == allowed {
				return contentType, true
			}
		}
	}
	return "", false
}
