package ports

import (
	"context"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentUploader is the inbound contract for the upload pipeline.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, contentType string, content []byte) (*domain.UploadResult, error)
}

// DocumentReader is the inbound read/delete model for stored documents.
type DocumentReader interface {
	List(ctx context.Context, opts domain.ListOptions) (*domain.DocumentPage, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// PDFDiagnoser is the inbound contract for PDF troubleshooting.
type PDFDiagnoser interface {
	Diagnose(ctx context.Context, filename, contentType string, content []byte) (*domain.PDFDiagnostic, error)
}

// Reclassifier starts and runs batch reclassification.
type Reclassifier interface {
	Trigger(ctx context.Context, reason string) (*domain.ReclassifyStats, bool, error)
	RunAll(ctx context.Context, job domain.ReclassifyJob) (*domain.ReclassifyStats, error)
}

// TextClassifier classifies raw text on demand.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string, method domain.ClassificationMethod) (domain.Classification, error)
}
