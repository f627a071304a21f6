package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"agentpack/internal/pack"
)

// FileSystemStore keeps archives as files under a root directory, one file
// per archive name.
type FileSystemStore struct {
	name string
	root string
}

// NewFileSystemStore creates a filesystem store rooted at the given path,
// creating the directory if needed.
func NewFileSystemStore(name, root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileSystemStore{name: name, root: root}, nil
}

// Put stores an archive under name using an atomic write (temp file + rename).
func (s *FileSystemStore) Put(name string, r io.Reader, size int64) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("invalid archive name: %s", name)
	}
	destPath := filepath.Join(s.root, name)

	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing archive data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Get retrieves the archive stored under name and writes it to w.
func (s *FileSystemStore) Get(name string, w io.Writer) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("invalid archive name: %s", name)
	}
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("archive not found: %s", name)
		}
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the store root exists and is a directory.
func (s *FileSystemStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", s.root)
	}
	return nil
}

// Compile-time check that FileSystemStore implements pack.Store
var _ pack.Store = (*FileSystemStore)(nil)
