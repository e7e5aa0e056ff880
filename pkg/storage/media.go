package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore persists uploaded item media on disk under a base directory.
// The rest of the system only ever holds the returned blob ref.
type MediaStore struct {
	baseDir string
}

// NewMediaStore ensures the base directory exists and returns a handle.
func NewMediaStore(baseDir string) (*MediaStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &MediaStore{baseDir: baseDir}, nil
}

// Save copies the reader into the given blob ref path and returns the ref.
func (s *MediaStore) Save(ref string, r io.Reader) (string, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return ref, nil
}

// Open returns a read-only handle for the stored blob.
func (s *MediaStore) Open(ref string) (*os.File, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored blob; missing blobs are not an error.
func (s *MediaStore) Remove(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

func (s *MediaStore) resolve(ref string) (string, error) {
	cleaned := filepath.Clean("/" + ref)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid media ref %q", ref)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
