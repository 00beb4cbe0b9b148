// Package disk implements a Store over a local directory, for running the
// forwarder against messages saved on disk.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shineum/ses-redirect/internal/storage"
)

// Store keeps each object as a file named after its key.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// path maps key to a file inside the root. Keys that would escape the root
// are rejected.
func (s *Store) path(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

// Fetch reads the file stored under key.
func (s *Store) Fetch(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Delete removes the file stored under key. Files have no versions, so the
// returned ID is always empty.
func (s *Store) Delete(_ context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", p, storage.ErrNotFound)
		}
		return "", fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return "", nil
}

// Location returns the root directory.
func (s *Store) Location() string {
	return s.dir
}
