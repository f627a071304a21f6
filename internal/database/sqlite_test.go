package database

import (
	"path/filepath"
	"testing"
	"time"

	"agentpack/internal/config"
	"agentpack/internal/pack"
)

func newTestHistory(t *testing.T) *SQLiteHistory {
	t.Helper()
	h, err := NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSQLiteHistory_RecordAndFinish(t *testing.T) {
	h := newTestHistory(t)
	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	id, err := h.RecordOperation(&pack.Operation{
		Kind:        "export",
		ArchivePath: "backup.json",
		Status:      "running",
		StartedAt:   started,
	})
	if err != nil {
		t.Fatalf("RecordOperation() error = %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero operation id")
	}

	finished := started.Add(2 * time.Second)
	if err := h.FinishOperation(id, "success", "a1b2c3d4e5f60718", "research-agent", 5, finished); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := h.RecentOperations(10)
	if err != nil {
		t.Fatalf("RecentOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}

	op := ops[0]
	if op.ID != id {
		t.Errorf("ID = %d, want %d", op.ID, id)
	}
	if op.Kind != "export" || op.Status != "success" {
		t.Errorf("op = %+v", op)
	}
	if op.Fingerprint != "a1b2c3d4e5f60718" {
		t.Errorf("Fingerprint = %q", op.Fingerprint)
	}
	if op.AgentName != "research-agent" || op.FileCount != 5 {
		t.Errorf("op = %+v", op)
	}
	if op.FinishedAt == nil || !op.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", op.FinishedAt, finished)
	}
}

func TestSQLiteHistory_RecentOperations(t *testing.T) {
	h := newTestHistory(t)
	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	for i, kind := range []string{"export", "import", "push"} {
		_, err := h.RecordOperation(&pack.Operation{
			Kind:      kind,
			Status:    "running",
			StartedAt: started.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordOperation() error = %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		ops, err := h.RecentOperations(10)
		if err != nil {
			t.Fatalf("RecentOperations() error = %v", err)
		}
		if len(ops) != 3 {
			t.Fatalf("len(ops) = %d, want 3", len(ops))
		}
		if ops[0].Kind != "push" || ops[2].Kind != "export" {
			t.Errorf("order = %s, %s, %s", ops[0].Kind, ops[1].Kind, ops[2].Kind)
		}
	})

	t.Run("running operation has no finish time", func(t *testing.T) {
		ops, _ := h.RecentOperations(1)
		if ops[0].FinishedAt != nil {
			t.Errorf("FinishedAt = %v, want nil", ops[0].FinishedAt)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		ops, err := h.RecentOperations(2)
		if err != nil {
			t.Fatalf("RecentOperations() error = %v", err)
		}
		if len(ops) != 2 {
			t.Errorf("len(ops) = %d, want 2", len(ops))
		}
	})
}

func TestNewHistoryFromConfig(t *testing.T) {
	t.Run("sqlite creates data dir and file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		h, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir}, "agent-1")
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		defer h.Close()

		sh, ok := h.(*SQLiteHistory)
		if !ok {
			t.Fatalf("history type = %T", h)
		}
		if sh.path != filepath.Join(dir, "agent-1.db") {
			t.Errorf("path = %q", sh.path)
		}
	})

	t.Run("sqlite requires data_dir", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite"}, "agent-1"); err == nil {
			t.Fatal("expected error for missing data_dir")
		}
	})

	t.Run("memory", func(t *testing.T) {
		h, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "memory"}, "agent-1")
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		h.Close()
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "stone-tablet"}, "agent-1"); err == nil {
			t.Fatal("expected error for unknown database type")
		}
	})
}
