package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemStore_PutGet(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileSystemStore("local", dir)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

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

	t.Run("put replaces existing content", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileSystemStore("local", dir)

		first := []byte("one")
		second := []byte("two!")
		if err := s.Put("a.json", bytes.NewReader(first), int64(len(first))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Put("a.json", bytes.NewReader(second), int64(len(second))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var buf bytes.Buffer
		if err := s.Get("a.json", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != "two!" {
			t.Errorf("content = %q, want %q", buf.String(), "two!")
		}
	})

	t.Run("size mismatch fails and leaves no file", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileSystemStore("local", dir)

		content := []byte("short")
		if err := s.Put("a.json", bytes.NewReader(content), 100); err == nil {
			t.Fatal("expected size mismatch error")
		}
		if _, err := os.Stat(filepath.Join(dir, "a.json")); !os.IsNotExist(err) {
			t.Error("partial file left behind")
		}
	})

	t.Run("missing archive", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileSystemStore("local", dir)

		var buf bytes.Buffer
		err := s.Get("nope.json", &buf)
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Fatalf("error = %v, want not found", err)
		}
	})

	t.Run("rejects escaping names", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileSystemStore("local", dir)

		content := []byte("x")
		if err := s.Put("../escape.json", bytes.NewReader(content), 1); err == nil {
			t.Fatal("expected invalid name error")
		}
		var buf bytes.Buffer
		if err := s.Get("/etc/passwd", &buf); err == nil {
			t.Fatal("expected invalid name error")
		}
	})
}

func TestFileSystemStore_ValidateSetup(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSystemStore("local", dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := s.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	os.RemoveAll(dir)
	if err := s.ValidateSetup(); err == nil {
		t.Error("expected error after root removed")
	}
}
