package database

import (
	"database/sql"
	"fmt"
	"time"

	"agentpack/internal/database/migrations"
	"agentpack/internal/pack"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteHistory implements pack.History using SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ pack.History = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens (or creates) the history database at path and runs
// any pending migrations. path can be ":memory:" for an in-memory database.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the history store relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite disables foreign keys by default for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// RecordOperation persists a new operation and returns its auto-increment ID.
func (h *SQLiteHistory) RecordOperation(op *pack.Operation) (int64, error) {
	res, err := h.db.Exec(
		`INSERT INTO operations (kind, archive_path, fingerprint, agent_name, file_count, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.Kind, op.ArchivePath, op.Fingerprint, op.AgentName, op.FileCount, op.Status, op.StartedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// FinishOperation marks an operation finished and records the fields only
// known at completion.
func (h *SQLiteHistory) FinishOperation(id int64, status, fingerprint, agentName string, fileCount int64, finishedAt time.Time) error {
	_, err := h.db.Exec(
		`UPDATE operations
		 SET status = ?, fingerprint = ?, agent_name = ?, file_count = ?, finished_at = ?
		 WHERE id = ?`,
		status, fingerprint, agentName, fileCount, finishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

// RecentOperations returns the most recent operations, newest first.
func (h *SQLiteHistory) RecentOperations(limit int) ([]*pack.Operation, error) {
	rows, err := h.db.Query(
		`SELECT id, kind, archive_path, fingerprint, agent_name, file_count, status, started_at, finished_at
		 FROM operations
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []*pack.Operation
	for rows.Next() {
		var op pack.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Kind, &op.ArchivePath, &op.Fingerprint, &op.AgentName,
			&op.FileCount, &op.Status, &op.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}

	return ops, nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
