package pack

import "io"

// Store is a storage backend for archive files. Operations stream via
// io.Reader/io.Writer so large archives never need to be held in memory.
type Store interface {
	// Put stores an archive under name. size is the number of bytes that will
	// be read from r. Storing the same name again replaces the old content.
	Put(name string, r io.Reader, size int64) error

	// Get retrieves the archive stored under name and writes it to w.
	Get(name string, w io.Writer) error

	// ValidateSetup verifies that the store is accessible and properly
	// configured.
	ValidateSetup() error
}
