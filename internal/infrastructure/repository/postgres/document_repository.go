package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const uniqueViolation = "23505"

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025031701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	content_type TEXT NOT NULL,
	file_path TEXT NOT NULL,
	size BIGINT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	category_prediction JSONB,
	uploaded_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_files_content_hash ON files(content_hash);
CREATE INDEX IF NOT EXISTS idx_files_uploaded_at ON files(uploaded_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	prediction, err := marshalPrediction(doc.CategoryPrediction)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO files (
	id, filename, content_type, file_path, size, content, content_hash, category_prediction, uploaded_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.Filename, doc.ContentType, doc.FilePath, doc.Size, doc.Content, doc.ContentHash,
		prediction, doc.UploadedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrDuplicate, "insert document", err)
		}
		return domain.WrapError(domain.ErrDatabase, "insert document", err)
	}
	return nil
}

const selectColumns = `id, filename, content_type, file_path, size, content, content_hash, category_prediction, uploaded_at`

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM files WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, domain.WrapError(domain.ErrDatabase, "get document", err)
	}
	return doc, nil
}

// FindByContentHash returns nil without error when no document has the hash.
func (r *DocumentRepository) FindByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM files WHERE content_hash = $1 LIMIT 1`, hash)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrDatabase, "find document by hash", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, opts domain.ListOptions) ([]domain.Document, int, error) {
	var filter any
	if opts.Category != "" {
		filter = string(opts.Category)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM files
WHERE $1::text IS NULL OR category_prediction ? $1::text
`, filter).Scan(&total); err != nil {
		return nil, 0, domain.WrapError(domain.ErrDatabase, "count documents", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectColumns+`
FROM files
WHERE $1::text IS NULL OR category_prediction ? $1::text
ORDER BY uploaded_at DESC, id DESC
LIMIT $2 OFFSET $3
`, filter, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, domain.WrapError(domain.ErrDatabase, "list documents", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, opts.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, domain.WrapError(domain.ErrDatabase, "scan document", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.WrapError(domain.ErrDatabase, "iterate documents", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return domain.WrapError(domain.ErrDatabase, "delete document", err)
	}
	return ensureAffected(res, "delete document", id)
}

// ListContents returns every (id, content) pair, oldest first.
func (r *DocumentRepository) ListContents(ctx context.Context) ([]domain.DocumentContent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, content FROM files ORDER BY uploaded_at ASC, id ASC`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDatabase, "list contents", err)
	}
	defer rows.Close()

	var out []domain.DocumentContent
	for rows.Next() {
		var item domain.DocumentContent
		if err := rows.Scan(&item.ID, &item.Content); err != nil {
			return nil, domain.WrapError(domain.ErrDatabase, "scan content", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrDatabase, "iterate contents", err)
	}
	return out, nil
}

func (r *DocumentRepository) SaveCategoryPrediction(ctx context.Context, id string, prediction domain.Distribution) error {
	payload, err := marshalPrediction(prediction)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE files SET category_prediction = $2 WHERE id = $1`, id, payload)
	if err != nil {
		return domain.WrapError(domain.ErrDatabase, "save category prediction", err)
	}
	return ensureAffected(res, "save category prediction", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc        domain.Document
		prediction []byte
	)
	if err := row.Scan(
		&doc.ID, &doc.Filename, &doc.ContentType, &doc.FilePath, &doc.Size, &doc.Content,
		&doc.ContentHash, &prediction, &doc.UploadedAt,
	); err != nil {
		return nil, err
	}
	if len(prediction) > 0 {
		if err := json.Unmarshal(prediction, &doc.CategoryPrediction); err != nil {
			return nil, fmt.Errorf("unmarshal category prediction: %w", err)
		}
	}
	return &doc, nil
}

func marshalPrediction(prediction domain.Distribution) ([]byte, error) {
	if prediction == nil {
		return nil, nil
	}
	payload, err := json.Marshal(prediction)
	if err != nil {
		return nil, fmt.Errorf("marshal category prediction: %w", err)
	}
	return payload, nil
}

func ensureAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrDatabase, operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
