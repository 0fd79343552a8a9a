package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// LocalBackend stores files on the local filesystem under a root directory,
// mirroring the media/user_<id>/ layout.
type LocalBackend struct {
	root string
}

// NewLocalBackend constructs a local-disk backend rooted at dir.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalBackend{root: dir}, nil
}

func (l *LocalBackend) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		// A short write must not leave a referenceable file behind.
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func (l *LocalBackend) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	return os.Open(storedPath)
}

func (l *LocalBackend) Delete(_ context.Context, storedPath string) error {
	err := os.Remove(storedPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
