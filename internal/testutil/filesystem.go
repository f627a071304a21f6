package testutil

import (
	"fmt"
	"sync"

	"agentpack/internal/pack"
)

// MockFilesystemManager is an in-memory filesystem for testing the collector
// and restore logic without touching disk.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailWrites lists paths whose WriteFile calls should fail.
	FailWrites map[string]bool
}

// NewMockFilesystemManager creates an empty mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string][]byte),
		FailWrites: make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// File returns the content of a file and whether it exists.
func (m *MockFilesystemManager) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	return content, ok
}

func (m *MockFilesystemManager) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return content, nil
}

func (m *MockFilesystemManager) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites[path] {
		return fmt.Errorf("write denied: %s", path)
	}
	m.files[path] = data
	return nil
}

func (m *MockFilesystemManager) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

// Compile-time check that MockFilesystemManager implements pack.FilesystemManager
var _ pack.FilesystemManager = (*MockFilesystemManager)(nil)
