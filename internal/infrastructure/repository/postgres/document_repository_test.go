package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

var documentColumns = []string{
	"id", "filename", "content_type", "file_path", "size", "content", "content_hash", "category_prediction", "uploaded_at",
}

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, content_type, file_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDDecodesPrediction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	uploaded := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT id, filename, content_type, file_path").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(
			"doc-1", "a.txt", "text/plain", "1_abc_a.txt", int64(12), "hello world.", "abc",
			[]byte(`{"Other": 0.2, "Legal Document": 0.7}`), uploaded,
		))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.Filename != "a.txt" || doc.Size != 12 || !doc.UploadedAt.Equal(uploaded) {
		t.Fatalf("unexpected document: %+v", doc)
	}
	top, ok := doc.CategoryPrediction.Top()
	if !ok || top.Category != domain.CategoryLegal || top.Value != 0.7 {
		t.Fatalf("expected prediction sorted by score, got %+v", doc.CategoryPrediction)
	}
}

func TestCreateMapsUniqueViolationToDuplicate(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO files").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key"})

	err := repo.Create(context.Background(), &domain.Document{ID: "doc-1", ContentHash: "abc"})
	if !domain.IsKind(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateStoresPredictionAsJSON(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	uploaded := time.Now().UTC()
	mock.ExpectExec("INSERT INTO files").
		WithArgs("doc-1", "a.txt", "text/plain", "1_abc_a.txt", int64(5), "hello", "abc",
			[]byte(`{"Other":1}`), uploaded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Document{
		ID:                 "doc-1",
		Filename:           "a.txt",
		ContentType:        "text/plain",
		FilePath:           "1_abc_a.txt",
		Size:               5,
		Content:            "hello",
		ContentHash:        "abc",
		CategoryPrediction: domain.FallbackDistribution(),
		UploadedAt:         uploaded,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindByContentHashMissingIsNotAnError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("WHERE content_hash = \\$1").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(documentColumns))

	doc, err := repo.FindByContentHash(context.Background(), "abc")
	if err != nil || doc != nil {
		t.Fatalf("expected nil, nil; got %v, %v", doc, err)
	}
}

func TestListAppliesPagingAndCategoryFilter(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM files")).
		WithArgs("Legal Document").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY uploaded_at DESC, id DESC")).
		WithArgs("Legal Document", 2, 1).
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow("b", "b.txt", "text/plain", "2_b.txt", int64(1), "b", "hb", nil, time.Now()).
			AddRow("a", "a.txt", "text/plain", "1_a.txt", int64(1), "a", "ha", []byte(`{"Legal Document":0.9}`), time.Now()))

	docs, total, err := repo.List(context.Background(), domain.ListOptions{Limit: 2, Offset: 1, Category: domain.CategoryLegal})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(docs) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(docs))
	}
	if docs[0].CategoryPrediction != nil {
		t.Fatalf("NULL prediction must stay nil, got %+v", docs[0].CategoryPrediction)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM files").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSaveCategoryPredictionWritesOrderedJSON(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE files SET category_prediction").
		WithArgs("doc-1", []byte(`{"Academic Paper":0.8,"Other":0.6}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveCategoryPrediction(context.Background(), "doc-1", domain.Distribution{
		{Category: domain.CategoryAcademic, Value: 0.8},
		{Category: domain.CategoryOther, Value: 0.6},
	})
	if err != nil {
		t.Fatalf("SaveCategoryPrediction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListContentsReturnsPairs(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, content FROM files").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).AddRow("a", "alpha").AddRow("b", ""))

	items, err := repo.ListContents(context.Background())
	if err != nil {
		t.Fatalf("ListContents() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].Content != "" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
