package store

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"agentpack/internal/pack"
)

// MemoryStore keeps archives in memory. Used in tests and as a scratch
// backend — contents are lost when the process exits.
type MemoryStore struct {
	name string

	mu       sync.RWMutex
	archives map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:     name,
		archives: make(map[string][]byte),
	}
}

// Put stores an archive under name, replacing any previous content.
func (s *MemoryStore) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading archive data: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[name] = data
	return nil
}

// Get retrieves the archive stored under name and writes it to w.
func (s *MemoryStore) Get(name string, w io.Writer) error {
	s.mu.RLock()
	data, ok := s.archives[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("archive not found: %s", name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing archive data: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for a memory store.
func (s *MemoryStore) ValidateSetup() error { return nil }

// Compile-time check that MemoryStore implements pack.Store
var _ pack.Store = (*MemoryStore)(nil)
