package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"agentpack/internal/pack"
)

// OSFilesystemManager is the real filesystem implementation of
// pack.FilesystemManager, backed by the os package.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// ReadFile reads the whole file at path.
func (m *OSFilesystemManager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating missing parent directories.
func (m *OSFilesystemManager) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Exists reports whether a file or directory exists at path.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Compile-time check that OSFilesystemManager implements pack.FilesystemManager
var _ pack.FilesystemManager = (*OSFilesystemManager)(nil)
