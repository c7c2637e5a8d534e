// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"errors"

	"pdfqa/internal/model"
)

// ErrDuplicateFilename is returned by Create when the filename uniqueness
// constraint fires. The pre-insert existence check makes this rare, but two
// concurrent uploads of the same name can both pass it; the constraint is the
// authoritative backstop.
var ErrDuplicateFilename = errors.New("filename already exists")

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document row and returns the stored record with its
	// DB-assigned ID and upload time. Returns ErrDuplicateFilename on a
	// uniqueness violation.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// ExistsByFilename reports whether a document with the given filename is stored.
	ExistsByFilename(ctx context.Context, filename string) (bool, error)

	// FindLatest returns the most recently uploaded document, ties broken by
	// highest ID. Returns sql.ErrNoRows when no document exists.
	FindLatest(ctx context.Context) (*model.Document, error)
}
