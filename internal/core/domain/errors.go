package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate document")
	ErrRateLimited      = errors.New("rate limited")
	ErrStorage          = errors.New("storage failure")
	ErrDatabase         = errors.New("database failure")
	ErrTemporary        = errors.New("temporary failure")
)

// Machine-readable codes surfaced to API clients.
const (
	CodeEmptyFile            = "EMPTY_FILE"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeUnsupportedFileType  = "UNSUPPORTED_FILE_TYPE"
	CodeInvalidFileExtension = "INVALID_FILE_EXTENSION"
	CodeInvalidFileType      = "INVALID_FILE_TYPE"
	CodeExtractionFailed     = "TEXT_EXTRACTION_FAILED"
	CodeDuplicateFile        = "DUPLICATE_FILE"
	CodeDocumentNotFound     = "DOCUMENT_NOT_FOUND"
	CodeStorageError         = "STORAGE_ERROR"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// CodedError is a rejection with a client-facing code, message and details.
// It unwraps to its kind so IsKind keeps working.
type CodedError struct {
	Kind    error
	Code    string
	Message string
	Details map[string]any
}

func NewCodedError(kind error, code, message string, details map[string]any) *CodedError {
	return &CodedError{Kind: kind, Code: code, Message: message, Details: details}
}

func (e *CodedError) Error() string {
	if e == nil {
		return "coded error"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func AsCoded(err error) (*CodedError, bool) {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}
