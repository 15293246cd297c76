package usecase

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const DefaultMaxUploadBytes int64 = 10 << 20

type UploadOptions struct {
	MaxBytes int64
	Logger   *slog.Logger
	Metrics  ports.PipelineMetrics
	// PDFInspector, when set, adds a structural report to the logs of
	// PDF uploads whose text could not be extracted.
	PDFInspector ports.PDFInspector
	Now          func() time.Time
}

// UploadUseCase validates an upload, extracts and classifies its text,
// stores the bytes and records the document.
type UploadUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	inspector  ports.PDFInspector
	metrics    ports.PipelineMetrics
	maxBytes   int64
	now        func() time.Time
	logger     *slog.Logger
}

func NewUploadUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	opts UploadOptions,
) *UploadUseCase {
	uc := &UploadUseCase{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		classifier: classifier,
		inspector:  opts.PDFInspector,
		metrics:    opts.Metrics,
		maxBytes:   opts.MaxBytes,
		now:        opts.Now,
		logger:     loggerOrDefault(opts.Logger, "upload"),
	}
	if uc.maxBytes <= 0 {
		uc.maxBytes = DefaultMaxUploadBytes
	}
	if uc.metrics == nil {
		uc.metrics = noopMetrics{}
	}
	if uc.now == nil {
		uc.now = func() time.Time { return time.Now().UTC() }
	}
	return uc
}

func (uc *UploadUseCase) Upload(ctx context.Context, filename, contentType string, content []byte) (*domain.UploadResult, error) {
	contentType = normalizeContentType(contentType)
	if err := uc.validate(filename, contentType, content); err != nil {
		return nil, err
	}

	sum := md5.Sum(content)
	contentHash := hex.EncodeToString(sum[:])

	extraction := uc.extractor.Extract(content, contentType, filename)
	if extraction.Text == "" {
		uc.metrics.ExtractionFailed(contentType)
		uc.logExtractionFailure(filename, contentType, content, extraction)
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeExtractionFailed,
			fmt.Sprintf("Could not extract text from file: %s", extraction.Error),
			map[string]any{
				"content_type": contentType,
				"filename":     filename,
				"file_size":    len(content),
			})
	}

	duplicate, err := uc.repo.FindByContentHash(ctx, contentHash)
	if err != nil {
		return nil, domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error checking for duplicates: %v", err), nil)
	}
	if duplicate != nil {
		return nil, duplicateError(duplicate.ID, duplicate.Filename, contentHash)
	}

	classification := uc.classifier.Classify(ctx, extraction.Text)
	uc.metrics.Classified(domain.MethodChunked, classification.Fallback)

	now := uc.now()
	storageKey := fmt.Sprintf("%d_%s_%s", now.Unix(), contentHash, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(content)); err != nil {
		uc.logger.Error("storage_save_failed", "key", storageKey, "error", err)
		return nil, domain.NewCodedError(domain.ErrStorage, domain.CodeStorageError,
			fmt.Sprintf("Error uploading file to storage: %v", err), nil)
	}

	doc := &domain.Document{
		ID:                 uuid.NewString(),
		Filename:           filename,
		ContentType:        contentType,
		FilePath:           storageKey,
		Size:               int64(len(content)),
		Content:            extraction.Text,
		ContentHash:        contentHash,
		CategoryPrediction: classification.Scores,
		UploadedAt:         now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		if delErr := uc.storage.Delete(ctx, storageKey); delErr != nil {
			uc.logger.Warn("storage_cleanup_failed", "key", storageKey, "error", delErr)
		}
		if domain.IsKind(err, domain.ErrDuplicate) {
			return nil, duplicateError("", "", contentHash)
		}
		return nil, domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error storing file metadata: %v", err), nil)
	}

	top, _ := classification.Scores.Top()
	uc.logger.Info("document_uploaded",
		"document_id", doc.ID,
		"filename", filename,
		"content_type", contentType,
		"size", doc.Size,
		"strategy", extraction.Strategy,
		"top_category", top.Category,
		"fallback", classification.Fallback,
	)

	return &domain.UploadResult{
		Document:       doc,
		Classification: classification,
		Extraction:     extraction,
	}, nil
}

func (uc *UploadUseCase) validate(filename, contentType string, content []byte) error {
	if len(content) == 0 {
		return domain.NewCodedError(domain.ErrInvalidInput, domain.CodeEmptyFile, "Uploaded file is empty", nil)
	}
	if int64(len(content)) > uc.maxBytes {
		return domain.NewCodedError(domain.ErrInvalidInput, domain.CodeFileTooLarge,
			fmt.Sprintf("File size exceeds maximum allowed size of %.1fMB", float64(uc.maxBytes)/1024/1024),
			map[string]any{
				"max_size_bytes":    uc.maxBytes,
				"actual_size_bytes": len(content),
			})
	}
	if !domain.IsSupportedContentType(contentType) {
		supported := domain.SupportedContentTypes()
		return domain.NewCodedError(domain.ErrInvalidInput, domain.CodeUnsupportedFileType,
			fmt.Sprintf("Unsupported file type: %s. Supported types: %s", contentType, strings.Join(supported, ", ")),
			map[string]any{"supported_types": supported})
	}
	if !domain.ExtensionMatches(contentType, filename) {
		ext := domain.FileExtension(filename)
		expected := domain.ExpectedExtensions(contentType)
		return domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidFileExtension,
			fmt.Sprintf("File extension '%s' does not match content type %s. Expected: %s", ext, contentType, strings.Join(expected, ", ")),
			map[string]any{
				"extension":           ext,
				"content_type":        contentType,
				"expected_extensions": expected,
			})
	}
	return nil
}

func (uc *UploadUseCase) logExtractionFailure(filename, contentType string, content []byte, extraction domain.Extraction) {
	attrs := []any{
		"filename", filename,
		"content_type", contentType,
		"size", len(content),
		"reason", extraction.Error,
	}
	if contentType == domain.ContentTypePDF && uc.inspector != nil {
		diag := uc.inspector.DiagnosePDF(content, filename)
		attrs = append(attrs,
			"has_pdf_header", diag.Checks.HasPDFHeader,
			"pdf_read", diag.Checks.Read,
		)
	}
	uc.logger.Warn("upload_extraction_failed", attrs...)
}

func duplicateError(id, filename, contentHash string) error {
	message := "Duplicate file detected."
	if filename != "" {
		message = fmt.Sprintf("Duplicate file detected. This content has already been uploaded as '%s'", filename)
	}
	return domain.NewCodedError(domain.ErrDuplicate, domain.CodeDuplicateFile, message, map[string]any{
		"duplicate_id":       id,
		"duplicate_filename": filename,
		"content_hash":       contentHash,
	})
}

// normalizeContentType drops media type parameters such as charset.
func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}
