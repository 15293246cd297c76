package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type repoFake struct {
	mu        sync.Mutex
	docs      map[string]*domain.Document
	createErr error
	listErr   error
	findErr   error
	deleteErr error
	saveErr   map[string]error
	saved     map[string]domain.Distribution
	lastList  domain.ListOptions
}

func newRepoFake(docs ...*domain.Document) *repoFake {
	f := &repoFake{docs: map[string]*domain.Document{}, saved: map[string]domain.Distribution{}}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *repoFake) FindByContentHash(_ context.Context, hash string) (*domain.Document, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, doc := range f.docs {
		if doc.ContentHash == hash {
			copyDoc := *doc
			return &copyDoc, nil
		}
	}
	return nil, nil
}

func (f *repoFake) List(_ context.Context, opts domain.ListOptions) ([]domain.Document, int, error) {
	f.lastList = opts
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	all := f.sorted()
	if opts.Offset >= len(all) {
		return nil, len(all), nil
	}
	end := min(opts.Offset+opts.Limit, len(all))
	return all[opts.Offset:end], len(all), nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", errors.New("no rows"))
	}
	delete(f.docs, id)
	return nil
}

func (f *repoFake) ListContents(context.Context) ([]domain.DocumentContent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.DocumentContent, 0, len(f.docs))
	for _, doc := range f.sorted() {
		out = append(out, domain.DocumentContent{ID: doc.ID, Content: doc.Content})
	}
	return out, nil
}

func (f *repoFake) SaveCategoryPrediction(_ context.Context, id string, prediction domain.Distribution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[id]; err != nil {
		return err
	}
	f.saved[id] = prediction
	return nil
}

func (f *repoFake) sorted() []domain.Document {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type storageFake struct {
	objects   map[string][]byte
	saveErr   error
	deleteErr error
	deleted   []string
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

type extractorFake struct {
	text     string
	err      string
	calls    int
	lastType string
}

func (f *extractorFake) Extract(content []byte, contentType, filename string) domain.Extraction {
	f.calls++
	f.lastType = contentType
	return domain.Extraction{
		Filename:    filename,
		ContentType: contentType,
		Size:        len(content),
		Text:        f.text,
		Error:       f.err,
		Strategy:    "fake",
	}
}

type inspectorFake struct {
	calls int
}

func (f *inspectorFake) DiagnosePDF(content []byte, filename string) domain.PDFDiagnostic {
	f.calls++
	return domain.PDFDiagnostic{
		Filename: filename,
		FileSize: len(content),
		Checks:   domain.PDFChecks{HasPDFHeader: bytes.HasPrefix(content, []byte("%PDF-")), Read: "success"},
	}
}

type classifierFake struct {
	mu         sync.Mutex
	result     domain.Classification
	normalized domain.Classification
	texts      []string
}

func (f *classifierFake) Classify(_ context.Context, text string) domain.Classification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.result
}

func (f *classifierFake) ClassifyNormalized(_ context.Context, text string) domain.Classification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.normalized
}

func (f *classifierFake) Degraded() bool { return false }

type queueFake struct {
	jobs []domain.ReclassifyJob
	err  error
}

func (f *queueFake) PublishReclassify(_ context.Context, job domain.ReclassifyJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *queueFake) SubscribeReclassify(context.Context, func(context.Context, domain.ReclassifyJob) error) error {
	return errors.New("not implemented")
}

type metricsFake struct {
	mu                sync.Mutex
	extractionFailed  []string
	classified        map[domain.ClassificationMethod]int
	fallbacks         int
	reclassifications []domain.ReclassifyStats
}

func newMetricsFake() *metricsFake {
	return &metricsFake{classified: map[domain.ClassificationMethod]int{}}
}

func (f *metricsFake) ExtractionFailed(contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractionFailed = append(f.extractionFailed, contentType)
}

func (f *metricsFake) Classified(method domain.ClassificationMethod, fallback bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classified[method]++
	if fallback {
		f.fallbacks++
	}
}

func (f *metricsFake) Reclassified(stats domain.ReclassifyStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reclassifications = append(f.reclassifications, stats)
}

func legalClassification() domain.Classification {
	return domain.Classification{Scores: domain.Distribution{
		{Category: domain.CategoryLegal, Value: 0.7},
		{Category: domain.CategoryBusiness, Value: 0.3},
	}}
}

func requireCode(t testing.TB, err error, code string) *domain.CodedError {
	t.Helper()
	coded, ok := domain.AsCoded(err)
	if !ok {
		t.Fatalf("expected coded error %s, got %v", code, err)
	}
	if coded.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, coded.Code, coded.Message)
	}
	return coded
}
