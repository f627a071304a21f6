package pack

// FilesystemManager abstracts file access so the collector and restore logic
// can be tested without touching the real filesystem.
type FilesystemManager interface {
	// ReadFile reads the whole file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, creating missing parent directories and
	// replacing any existing content.
	WriteFile(path string, data []byte) error

	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)
}
