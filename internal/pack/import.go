package pack

import "path/filepath"

// ImportOptions configures a single Import call.
type ImportOptions struct {
	// TargetDir is the root the stored relative paths are resolved against.
	TargetDir string

	// Password is required when the archive is encrypted.
	Password string

	// Overwrite allows replacing files that already exist in TargetDir.
	// When false, existing files are skipped and counted as such.
	Overwrite bool
}

// SectionCounts holds per-section file counts, used both for collected files
// on export and restored/skipped files on import.
type SectionCounts struct {
	Credentials int
	Memory      int
}

// ImportResult summarizes what an Import actually did. Restored counts only
// files written to disk — skipped and failed files do not count.
type ImportResult struct {
	Agent    AgentIdentity
	Restored SectionCounts
	Skipped  SectionCounts
}

// Import validates the archive, decrypts it if necessary, and writes its
// files under TargetDir: all credentials first, then all memory files, each
// in stored order. The archive itself is never mutated. Per-file write
// failures and path-escape attempts are warnings — the rest of the import
// continues.
func (s *Service) Import(archive *Archive, opts ImportOptions) (*ImportResult, error) {
	if archive.Version != Version {
		return nil, &VersionError{Got: archive.Version, Want: Version}
	}

	credentials := archive.Credentials
	memory := archive.Memory

	if archive.Encrypted || credentials.IsEncrypted() || memory.IsEncrypted() {
		if opts.Password == "" {
			return nil, &ConfigurationError{Reason: "archive is encrypted but no password was provided"}
		}
		var err error
		if credentials, err = s.decryptSection(credentials, "credentials", opts.Password); err != nil {
			return nil, err
		}
		if memory, err = s.decryptSection(memory, "memory", opts.Password); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{Agent: archive.Agent}
	result.Restored.Credentials, result.Skipped.Credentials = s.restoreSection(credentials.Plain, opts)
	result.Restored.Memory, result.Skipped.Memory = s.restoreSection(memory.Plain, opts)

	s.logger.Info("archive imported",
		"agent", archive.Agent.Name,
		"credentials", result.Restored.Credentials,
		"memory", result.Restored.Memory,
		"target", opts.TargetDir,
	)
	return result, nil
}

// decryptSection decrypts one section, mapping any cipher failure to a
// DecryptionError so a wrong password is never reported as a missing one.
func (s *Service) decryptSection(section FileSection, name, password string) (FileSection, error) {
	if !section.IsEncrypted() {
		return section, nil
	}
	plain, err := s.cipher.DecryptSection(section.Encrypted, password)
	if err != nil {
		return FileSection{}, &DecryptionError{Section: name, Err: err}
	}
	return FileSection{Plain: plain}, nil
}

// restoreSection writes one plain section's files under the target directory
// and returns (restored, skipped) counts.
func (s *Service) restoreSection(plain *PlainSection, opts ImportOptions) (restored, skipped int) {
	if plain == nil {
		return 0, 0
	}

	for _, record := range plain.Files {
		// A stored path that is absolute or escapes the target root is
		// rejected, never clamped or followed.
		if !filepath.IsLocal(record.Path) {
			s.logger.Warn("rejecting path outside target directory", "path", record.Path)
			continue
		}

		target := filepath.Join(opts.TargetDir, filepath.FromSlash(record.Path))

		exists, err := s.fsys.Exists(target)
		if err != nil {
			s.logger.Warn("skipping file: cannot stat target", "path", record.Path, "error", err)
			continue
		}
		if exists && !opts.Overwrite {
			s.logger.Warn("skipping existing file", "path", record.Path)
			skipped++
			continue
		}

		if err := s.fsys.WriteFile(target, []byte(record.Content)); err != nil {
			s.logger.Warn("skipping file: write failed", "path", record.Path, "error", err)
			continue
		}

		restored++
		s.logger.Debug("file restored", "path", record.Path)
	}

	return restored, skipped
}
