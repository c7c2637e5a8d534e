package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// localStore retains files in a flat directory on disk. It is the default
// backend: every stored document has exactly one file at dir/<filename>.
type localStore struct {
	dir string
}

// NewLocal creates a disk-backed FileStore rooted at dir, creating the
// directory if needed.
func NewLocal(dir string) (FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) path(name string) string {
	// Base strips any path separators a client may smuggle into the filename.
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *localStore) Save(_ context.Context, name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *localStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *localStore) Remove(_ context.Context, name string) error {
	return os.Remove(s.path(name))
}
