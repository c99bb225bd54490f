// Package blob stores rendered meme images on disk, keyed by generated ids.
//
// Records only carry a reference; the bytes live here. Keeps the database
// rows small and lets large images be cleaned up independently.
package blob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/sakif/memeforge/internal/apperror"
)

// Store writes image blobs under a single directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put stores data under a fresh id and returns the id.
func (s *Store) Put(data []byte) (string, error) {
	id := xid.New().String()
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", id, err)
	}
	return id, nil
}

// Get returns the bytes for a previously stored id.
func (s *Store) Get(id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound("image", id)
		}
		return nil, fmt.Errorf("read blob %s: %w", id, err)
	}
	return data, nil
}

// Delete removes a blob. Deleting an id that was already removed is not an
// error; the caller only cares that it is gone.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, "meme-image-"+id)
}
