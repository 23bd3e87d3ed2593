package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalStore struct {
	rootDir string
}

var _ Store = &LocalStore{}

// NewLocalStore creates the root directory if it does not exist yet.
func NewLocalStore(dir string) (*LocalStore, error) {
	rootDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	if err := os.MkdirAll(rootDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", rootDir, err)
	}

	return &LocalStore{rootDir: rootDir}, nil
}

func (s *LocalStore) fullpath(name string) string {
	return filepath.Join(s.rootDir, name)
}

// Path returns where an image with the given name is kept on disk.
func (s *LocalStore) Path(name string) string {
	return s.fullpath(name)
}

func (s *LocalStore) Save(ctx context.Context, name string, data io.Reader) error {
	dst, err := os.Create(s.fullpath(name))
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	file, err := os.Open(s.fullpath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return file, nil
}
