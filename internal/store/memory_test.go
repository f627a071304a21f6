package store

import (
	"bytes"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := NewMemoryStore("mem")

		content := []byte(`{"version":"1.0"}`)
		if err := s.Put("backup.json", bytes.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var buf bytes.Buffer
		if err := s.Get("backup.json", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), content) {
			t.Errorf("content = %q, want %q", buf.Bytes(), content)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		s := NewMemoryStore("mem")
		if err := s.Put("a.json", bytes.NewReader([]byte("abc")), 10); err == nil {
			t.Fatal("expected size mismatch error")
		}
	})

	t.Run("missing archive", func(t *testing.T) {
		s := NewMemoryStore("mem")
		var buf bytes.Buffer
		if err := s.Get("nope.json", &buf); err == nil {
			t.Fatal("expected not found error")
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		s := NewMemoryStore("mem")
		if err := s.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
