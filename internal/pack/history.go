package pack

import "time"

// Operation is one recorded CLI operation against an archive.
type Operation struct {
	ID          int64
	Kind        string // "export", "import", "verify", "push", "pull"
	ArchivePath string
	Fingerprint string
	AgentName   string
	FileCount   int64
	Status      string // "running", "success" or "error"
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// History records archive operations for the `history` command.
type History interface {
	// RecordOperation persists a new operation and returns its ID.
	RecordOperation(op *Operation) (int64, error)

	// FinishOperation marks an operation finished with the given status and
	// fills in the fields only known at completion.
	FinishOperation(id int64, status, fingerprint, agentName string, fileCount int64, finishedAt time.Time) error

	// RecentOperations returns the most recent operations, newest first.
	RecentOperations(limit int) ([]*Operation, error)

	// Close releases the underlying storage.
	Close() error
}
