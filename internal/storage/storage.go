package storage

import (
	"context"
	"io"
)

// Store holds the images fetched for a batch run. The uploader re-opens an
// image through this interface on every attempt, so Open must return a fresh
// reader each call.
type Store interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
