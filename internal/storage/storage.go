package storage

import "context"

// Package storage contains file retention backends for uploaded PDFs.
// A stored name maps to exactly one retained object; names are flat,
// mirroring the filename column in the documents table.

// FileStore persists validated upload bytes under a flat namespace.
type FileStore interface {
	// Save writes data under name. Overwriting is not expected; callers
	// resolve name collisions before saving.
	Save(ctx context.Context, name string, data []byte) error
	// Exists reports whether an object with the given name is retained.
	Exists(ctx context.Context, name string) (bool, error)
	// Remove deletes the object by name. Used as a compensating action when
	// a later ingestion step fails.
	Remove(ctx context.Context, name string) error
}
