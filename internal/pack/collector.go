package pack

import (
	"path/filepath"
	"unicode/utf8"
)

// Collector reads a list of relative file paths rooted at a working directory
// into FileRecords. Individual unreadable files are warnings, never failures:
// the record is omitted and collection continues, so a partially missing set
// of sources still produces a usable archive.
type Collector struct {
	fsys   FilesystemManager
	clock  Clock
	logger Logger
}

// NewCollector creates a Collector with the provided dependencies.
func NewCollector(fsys FilesystemManager, clock Clock, logger Logger) *Collector {
	return &Collector{
		fsys:   fsys,
		clock:  clock,
		logger: logger,
	}
}

// Collect reads each relative path under workDir and returns one FileRecord
// per readable UTF-8 file, preserving input order. The stored path is the
// relative path exactly as supplied, not the resolved absolute path, so the
// archive stays portable across machines. Updated is stamped at the moment of
// the read, not taken from filesystem metadata.
func (c *Collector) Collect(workDir string, paths []string) []FileRecord {
	records := make([]FileRecord, 0, len(paths))

	for _, rel := range paths {
		abs := filepath.Join(workDir, rel)

		data, err := c.fsys.ReadFile(abs)
		if err != nil {
			c.logger.Warn("skipping unreadable file", "path", rel, "error", err)
			continue
		}
		if !utf8.Valid(data) {
			c.logger.Warn("skipping non-text file", "path", rel)
			continue
		}

		records = append(records, FileRecord{
			Path:    rel,
			Content: string(data),
			Updated: c.clock.Now(),
		})
		c.logger.Debug("file collected", "path", rel, "bytes", len(data))
	}

	return records
}
