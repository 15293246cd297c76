package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type DocumentsUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewDocumentsUseCase(repo ports.DocumentRepository, storage ports.ObjectStorage, logger *slog.Logger) *DocumentsUseCase {
	return &DocumentsUseCase{
		repo:    repo,
		storage: storage,
		logger:  loggerOrDefault(logger, "documents"),
	}
}

// List pages through documents newest first. A zero Limit means the default page size.
func (uc *DocumentsUseCase) List(ctx context.Context, opts domain.ListOptions) (*domain.DocumentPage, error) {
	if opts.Limit == 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit < 1 || opts.Limit > MaxListLimit {
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidRequest,
			fmt.Sprintf("limit must be between 1 and %d", MaxListLimit), map[string]any{"limit": opts.Limit})
	}
	if opts.Offset < 0 {
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidRequest,
			"offset must be non-negative", map[string]any{"offset": opts.Offset})
	}
	if opts.Category != "" && !domain.IsKnownCategory(opts.Category) {
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidRequest,
			fmt.Sprintf("unknown category: %s", opts.Category), map[string]any{"categories": domain.Categories()})
	}

	docs, total, err := uc.repo.List(ctx, opts)
	if err != nil {
		return nil, domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error retrieving files: %v", err), nil)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return &domain.DocumentPage{
		Documents: docs,
		Pagination: domain.Pagination{
			Total:   total,
			Offset:  opts.Offset,
			Limit:   opts.Limit,
			HasMore: total > opts.Offset+opts.Limit,
		},
	}, nil
}

func (uc *DocumentsUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return nil, notFoundError(id)
		}
		return nil, domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error retrieving file: %v", err), nil)
	}
	return doc, nil
}

// Delete removes the stored bytes and then the row. A storage failure is
// logged and does not block removing the metadata.
func (uc *DocumentsUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.FilePath); err != nil {
		uc.logger.Warn("storage_delete_failed", "document_id", id, "key", doc.FilePath, "error", err)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return notFoundError(id)
		}
		return domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error deleting file: %v", err), nil)
	}
	uc.logger.Info("document_deleted", "document_id", id, "filename", doc.Filename)
	return nil
}

func notFoundError(id string) error {
	return domain.NewCodedError(domain.ErrDocumentNotFound, domain.CodeDocumentNotFound,
		fmt.Sprintf("Document with ID %s not found", id), map[string]any{"document_id": id})
}
