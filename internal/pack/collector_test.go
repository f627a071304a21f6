package pack_test

import (
	"path/filepath"
	"testing"
	"time"

	"agentpack/internal/pack"
	"agentpack/internal/testutil"
)

func TestCollector_Collect(t *testing.T) {
	t.Run("collects files in input order", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "b.env"), []byte("B=2"))
		fsys.AddFile(filepath.Join("/work", "a.env"), []byte("A=1"))

		c := pack.NewCollector(fsys, testutil.FixedClock(), pack.NewNopLogger())
		records := c.Collect("/work", []string{"b.env", "a.env"})

		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		if records[0].Path != "b.env" || records[1].Path != "a.env" {
			t.Errorf("order not preserved: %q, %q", records[0].Path, records[1].Path)
		}
		if records[0].Content != "B=2" {
			t.Errorf("content = %q, want %q", records[0].Content, "B=2")
		}
	})

	t.Run("stores the relative path not the resolved one", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "sub", "deep.md"), []byte("x"))

		c := pack.NewCollector(fsys, testutil.FixedClock(), pack.NewNopLogger())
		records := c.Collect("/work", []string{filepath.Join("sub", "deep.md")})

		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Path != filepath.Join("sub", "deep.md") {
			t.Errorf("path = %q, want the caller-supplied relative path", records[0].Path)
		}
	})

	t.Run("missing file is skipped with a warning", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "present.key"), []byte("k"))

		logger := testutil.NewRecordingLogger()
		c := pack.NewCollector(fsys, testutil.FixedClock(), logger)
		records := c.Collect("/work", []string{"present.key", "missing.key"})

		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Path != "present.key" {
			t.Errorf("path = %q, want %q", records[0].Path, "present.key")
		}
		if len(logger.Warnings) != 1 {
			t.Errorf("got %d warnings, want 1: %v", len(logger.Warnings), logger.Warnings)
		}
	})

	t.Run("non-text file is skipped with a warning", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "binary.bin"), []byte{0xff, 0xfe, 0x00, 0x81})

		logger := testutil.NewRecordingLogger()
		c := pack.NewCollector(fsys, testutil.FixedClock(), logger)
		records := c.Collect("/work", []string{"binary.bin"})

		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
		if len(logger.Warnings) != 1 {
			t.Errorf("got %d warnings, want 1", len(logger.Warnings))
		}
	})

	t.Run("updated is stamped from the clock at read time", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "a.md"), []byte("a"))

		clock := testutil.NewStubClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
		c := pack.NewCollector(fsys, clock, pack.NewNopLogger())
		records := c.Collect("/work", []string{"a.md"})

		if !records[0].Updated.Equal(clock.Now()) {
			t.Errorf("updated = %v, want %v", records[0].Updated, clock.Now())
		}
	})

	t.Run("empty path list yields empty records", func(t *testing.T) {
		c := pack.NewCollector(testutil.NewMockFilesystemManager(), testutil.FixedClock(), pack.NewNopLogger())
		records := c.Collect("/work", nil)
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
	})
}
