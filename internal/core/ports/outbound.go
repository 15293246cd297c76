package ports

import (
	"context"
	"io"
	"iter"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentRepository persists document metadata, content and predictions.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	FindByContentHash(ctx context.Context, hash string) (*domain.Document, error)
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Document, int, error)
	Delete(ctx context.Context, id string) error
	ListContents(ctx context.Context) ([]domain.DocumentContent, error)
	SaveCategoryPrediction(ctx context.Context, id string, prediction domain.Distribution) error
}

// ObjectStorage stores uploaded file bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// JobQueue publishes/consumes reclassification jobs.
type JobQueue interface {
	PublishReclassify(ctx context.Context, job domain.ReclassifyJob) error
	SubscribeReclassify(ctx context.Context, handler func(context.Context, domain.ReclassifyJob) error) error
}

// TextExtractor turns raw bytes into text. Failures are reported in the
// returned Extraction, never as errors.
type TextExtractor interface {
	Extract(content []byte, contentType, filename string) domain.Extraction
}

// PDFInspector produces the operator diagnostic for a PDF.
type PDFInspector interface {
	DiagnosePDF(content []byte, filename string) domain.PDFDiagnostic
}

// DocumentClassifier maps text onto the category set. It never fails:
// degraded runs come back as a fallback classification.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) domain.Classification
	ClassifyNormalized(ctx context.Context, text string) domain.Classification
	Degraded() bool
}

// Embedder builds vectors for text batches.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TextNormalizer canonicalizes text before embedding.
type TextNormalizer interface {
	Normalize(text string) string
}

// Chunker segments normalized text into bounded, sentence-respecting chunks.
type Chunker interface {
	Chunks(text string, maxChars int) iter.Seq[domain.TextChunk]
}

// PipelineMetrics receives extraction and classification outcomes.
type PipelineMetrics interface {
	ExtractionFailed(contentType string)
	Classified(method domain.ClassificationMethod, fallback bool)
	Reclassified(stats domain.ReclassifyStats)
}
