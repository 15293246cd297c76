package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

func newUploadFixture() (*UploadUseCase, *repoFake, *storageFake, *extractorFake, *metricsFake) {
	repo := newRepoFake()
	storage := newStorageFake()
	extractor := &extractorFake{text: "This agreement is made between the parties."}
	metrics := newMetricsFake()
	uc := NewUploadUseCase(repo, storage, extractor, &classifierFake{result: legalClassification()}, UploadOptions{
		MaxBytes:     64,
		Metrics:      metrics,
		PDFInspector: &inspectorFake{},
		Now:          func() time.Time { return time.Unix(1700000000, 0).UTC() },
	})
	return uc, repo, storage, extractor, metrics
}

func TestUploadSuccess(t *testing.T) {
	uc, repo, storage, _, metrics := newUploadFixture()

	result, err := uc.Upload(context.Background(), "my contract.txt", "text/plain; charset=utf-8", []byte("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	doc := result.Document
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	if doc.ContentType != domain.ContentTypePlainText {
		t.Fatalf("expected normalized content type, got %q", doc.ContentType)
	}
	if doc.ContentHash != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5: %s", doc.ContentHash)
	}
	wantKey := "1700000000_5d41402abc4b2a76b9719d911017c592_my_contract.txt"
	if doc.FilePath != wantKey {
		t.Fatalf("expected key %q, got %q", wantKey, doc.FilePath)
	}
	if string(storage.objects[wantKey]) != "hello" {
		t.Fatalf("expected stored bytes under %q", wantKey)
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Fatalf("expected row to be created")
	}
	if top, _ := doc.CategoryPrediction.Top(); top.Category != domain.CategoryLegal {
		t.Fatalf("unexpected top category: %+v", top)
	}
	if metrics.classified[domain.MethodChunked] != 1 {
		t.Fatalf("expected classification to be counted")
	}
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		contentType string
		content     string
		code        string
		message     string
	}{
		{"empty", "a.txt", "text/plain", "", domain.CodeEmptyFile, "Uploaded file is empty"},
		{"too large", "a.txt", "text/plain", strings.Repeat("x", 65), domain.CodeFileTooLarge, "File size exceeds maximum allowed size of 0.0MB"},
		{"unsupported", "a.zip", "application/zip", "PK", domain.CodeUnsupportedFileType, "Unsupported file type: application/zip."},
		{"extension mismatch", "a.pdf", "text/plain", "hi", domain.CodeInvalidFileExtension, "File extension '.pdf' does not match content type text/plain. Expected: .txt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, repo, storage, extractor, _ := newUploadFixture()
			_, err := uc.Upload(context.Background(), tc.filename, tc.contentType, []byte(tc.content))
			coded := requireCode(t, err, tc.code)
			if !strings.HasPrefix(coded.Message, tc.message) {
				t.Fatalf("expected message prefix %q, got %q", tc.message, coded.Message)
			}
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input kind")
			}
			if extractor.calls != 0 || len(storage.objects) != 0 || len(repo.docs) != 0 {
				t.Fatalf("rejected upload must not reach the pipeline")
			}
		})
	}
}

func TestUploadTooLargeMessageUsesMegabytes(t *testing.T) {
	uc := NewUploadUseCase(newRepoFake(), newStorageFake(), &extractorFake{text: "x"}, &classifierFake{}, UploadOptions{})
	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", make([]byte, DefaultMaxUploadBytes+1))
	coded := requireCode(t, err, domain.CodeFileTooLarge)
	if coded.Message != "File size exceeds maximum allowed size of 10.0MB" {
		t.Fatalf("unexpected message: %q", coded.Message)
	}
}

func TestUploadExtractionFailure(t *testing.T) {
	uc, repo, storage, extractor, metrics := newUploadFixture()
	extractor.text = ""
	extractor.err = "PDF file is encrypted and cannot be read"

	_, err := uc.Upload(context.Background(), "locked.pdf", "application/pdf", []byte("%PDF-1.4"))
	coded := requireCode(t, err, domain.CodeExtractionFailed)
	if coded.Message != "Could not extract text from file: PDF file is encrypted and cannot be read" {
		t.Fatalf("unexpected message: %q", coded.Message)
	}
	if coded.Details["filename"] != "locked.pdf" || coded.Details["file_size"] != 8 {
		t.Fatalf("unexpected details: %#v", coded.Details)
	}
	if len(storage.objects) != 0 || len(repo.docs) != 0 {
		t.Fatalf("nothing must be stored on extraction failure")
	}
	if len(metrics.extractionFailed) != 1 || metrics.extractionFailed[0] != domain.ContentTypePDF {
		t.Fatalf("expected extraction failure metric, got %v", metrics.extractionFailed)
	}
}

func TestUploadDuplicate(t *testing.T) {
	uc, repo, storage, _, _ := newUploadFixture()
	repo.docs["existing"] = &domain.Document{
		ID:          "existing",
		Filename:    "first.txt",
		ContentHash: "5d41402abc4b2a76b9719d911017c592",
	}

	_, err := uc.Upload(context.Background(), "second.txt", "text/plain", []byte("hello"))
	coded := requireCode(t, err, domain.CodeDuplicateFile)
	if coded.Message != "Duplicate file detected. This content has already been uploaded as 'first.txt'" {
		t.Fatalf("unexpected message: %q", coded.Message)
	}
	if coded.Details["duplicate_id"] != "existing" {
		t.Fatalf("unexpected details: %#v", coded.Details)
	}
	if !domain.IsKind(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate kind")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("duplicate must not be stored")
	}
}

func TestUploadStorageFailure(t *testing.T) {
	uc, repo, storage, _, _ := newUploadFixture()
	storage.saveErr = errors.New("disk full")

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", []byte("hello"))
	requireCode(t, err, domain.CodeStorageError)
	if len(repo.docs) != 0 {
		t.Fatalf("row must not be created when storage fails")
	}
}

func TestUploadDatabaseFailureRemovesObject(t *testing.T) {
	uc, repo, storage, _, _ := newUploadFixture()
	repo.createErr = domain.WrapError(domain.ErrDatabase, "create document", errors.New("connection reset"))

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", []byte("hello"))
	requireCode(t, err, domain.CodeDatabaseError)
	if len(storage.deleted) != 1 || len(storage.objects) != 0 {
		t.Fatalf("expected stored object to be removed, deleted=%v", storage.deleted)
	}
}

func TestUploadConcurrentDuplicateInsert(t *testing.T) {
	uc, repo, _, _, _ := newUploadFixture()
	repo.createErr = domain.WrapError(domain.ErrDuplicate, "create document", errors.New("23505"))

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", []byte("hello"))
	requireCode(t, err, domain.CodeDuplicateFile)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"my report.pdf":    "my_report.pdf",
		"../../etc/passwd": "passwd",
		"отчёт.txt":        "_____.txt",
		"":                 "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
