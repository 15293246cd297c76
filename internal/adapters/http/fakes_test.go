package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type uploaderFake struct {
	err         error
	filename    string
	contentType string
	content     []byte
}

func (f *uploaderFake) Upload(_ context.Context, filename, contentType string, content []byte) (*domain.UploadResult, error) {
	f.filename = filename
	f.contentType = contentType
	f.content = content
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UploadResult{Document: &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		CategoryPrediction: domain.Distribution{
			{Category: domain.CategoryLegal, Value: 0.8},
			{Category: domain.CategoryOther, Value: 0.2},
		},
		UploadedAt: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
	}}, nil
}

type documentsFake struct {
	err      error
	page     *domain.DocumentPage
	lastOpts domain.ListOptions
	deleted  string
}

func (f *documentsFake) List(_ context.Context, opts domain.ListOptions) (*domain.DocumentPage, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *documentsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "a.txt"}, nil
}

func (f *documentsFake) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

type diagnoserFake struct{}

func (diagnoserFake) Diagnose(_ context.Context, filename, contentType string, content []byte) (*domain.PDFDiagnostic, error) {
	if contentType != domain.ContentTypePDF {
		return nil, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidFileType,
			"Only PDF files can be diagnosed with this endpoint", nil)
	}
	return &domain.PDFDiagnostic{
		Filename: filename,
		FileSize: len(content),
		Checks:   domain.PDFChecks{HasPDFHeader: true, Read: "success"},
		Result:   &domain.ExtractionReport{Success: true, TextLength: 12},
	}, nil
}

type reclassifierFake struct {
	found int
	err   error
}

func (f reclassifierFake) Trigger(context.Context, string) (*domain.ReclassifyStats, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.found == 0 {
		return &domain.ReclassifyStats{}, false, nil
	}
	return &domain.ReclassifyStats{JobID: "job-1", Found: f.found}, true, nil
}

func (f reclassifierFake) RunAll(context.Context, domain.ReclassifyJob) (*domain.ReclassifyStats, error) {
	return &domain.ReclassifyStats{}, nil
}

type textClassifierFake struct{}

func (textClassifierFake) ClassifyText(_ context.Context, text string, method domain.ClassificationMethod) (domain.Classification, error) {
	if method != domain.MethodChunked && method != domain.MethodNormalized {
		return domain.Classification{}, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidRequest, "unknown classification method", nil)
	}
	if text == "" {
		return domain.FallbackClassification("empty text"), nil
	}
	return domain.Classification{Scores: domain.Distribution{{Category: domain.CategoryAcademic, Value: 1}}}, nil
}

type healthFake bool

func (h healthFake) Degraded() bool { return bool(h) }

func testServices() Services {
	return Services{
		Uploader:     &uploaderFake{},
		Documents:    &documentsFake{page: &domain.DocumentPage{Documents: []domain.Document{}}},
		Diagnoser:    diagnoserFake{},
		Reclassifier: reclassifierFake{found: 2},
		Classifier:   textClassifierFake{},
		Health:       healthFake(false),
	}
}

func newTestHandler(cfg config.Config, svc Services) http.Handler {
	return NewRouter(cfg, svc).Handler()
}
