// Package storage persists uploaded images. Stored names are generated, not
// caller-supplied: a random identifier plus the original extension under a
// per-owner prefix, so concurrent uploads never collide.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// Backend defines common file operations across storage backends.
type Backend interface {
	// Put writes the object and returns the stored path. A failed write
	// must not leave a referenceable object behind.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Open reads back a previously stored object.
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, storedPath string) error
}

// FileStore wraps a Backend with per-owner key generation.
type FileStore struct {
	backend Backend
}

// NewFileStore constructs a FileStore for the provided backend.
func NewFileStore(backend Backend) *FileStore {
	return &FileStore{backend: backend}
}

// Save stores the uploaded bytes under a generated unique name in the
// owner's directory and returns the stored path.
func (s *FileStore) Save(ctx context.Context, ownerID int, filename string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("user_%d/%s%s", ownerID, uuid.NewString(), path.Ext(filename))
	return s.backend.Put(ctx, key, data, contentType)
}

// Open reads back a stored image.
func (s *FileStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	return s.backend.Open(ctx, storedPath)
}

// Delete removes a stored image. Missing files are tolerated so the
// compensation step of the upload pipeline stays idempotent.
func (s *FileStore) Delete(ctx context.Context, storedPath string) error {
	return s.backend.Delete(ctx, storedPath)
}
