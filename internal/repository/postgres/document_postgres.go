package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"pdfqa/internal/model"
	"pdfqa/internal/repository"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (filename, content)
		VALUES ($1, $2)
		RETURNING id, filename, content, upload_time
	`
	row := r.db.QueryRowContext(ctx, q, doc.Filename, doc.Content)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.Filename,
		&out.Content,
		&out.UploadedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicateFilename
		}
		return nil, err
	}
	return &out, nil
}

// ExistsByFilename reports whether a row with the given filename exists.
func (r *DocumentPostgres) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE filename = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, filename).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FindLatest fetches the most recently uploaded document.
func (r *DocumentPostgres) FindLatest(ctx context.Context) (*model.Document, error) {
	const q = `
		SELECT id, filename, content, upload_time
		FROM documents
		ORDER BY upload_time DESC, id DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, q)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.Content,
		&d.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
