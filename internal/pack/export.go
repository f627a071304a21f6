package pack

import "fmt"

// ExportOptions configures a single Export call.
type ExportOptions struct {
	// WorkDir is the root the relative path lists are resolved against.
	WorkDir string

	// CredentialPaths and MemoryPaths are ordered lists of relative paths to
	// collect into the two archive sections.
	CredentialPaths []string
	MemoryPaths     []string

	// Encrypt encrypts both sections. Requires a non-empty Password.
	Encrypt  bool
	Password string
}

// Export collects the credential and memory files and assembles them, with
// the identity metadata, into a complete Archive. When encryption is
// requested both sections are encrypted independently, each with its own
// fresh salt and IV. Export only reads files — it never writes.
//
// The returned counts are the files actually collected into each section,
// before any encryption, so skipped sources are not counted.
func (s *Service) Export(identity AgentIdentity, opts ExportOptions) (*Archive, SectionCounts, error) {
	if identity.Name == "" {
		return nil, SectionCounts{}, &ValidationError{Field: "agent name"}
	}
	if opts.Encrypt && opts.Password == "" {
		return nil, SectionCounts{}, &ConfigurationError{Reason: "encryption requested without a password"}
	}

	collector := NewCollector(s.fsys, s.clock, s.logger)
	credentials := NewPlainSection(collector.Collect(opts.WorkDir, opts.CredentialPaths))
	memory := NewPlainSection(collector.Collect(opts.WorkDir, opts.MemoryPaths))
	counts := SectionCounts{
		Credentials: len(credentials.Plain.Files),
		Memory:      len(memory.Plain.Files),
	}

	exported := s.clock.Now()
	if identity.Created.IsZero() {
		identity.Created = exported
	}
	if identity.Metadata == nil {
		identity.Metadata = map[string]any{}
	}

	if opts.Encrypt {
		encCreds, err := s.cipher.EncryptSection(credentials.Plain, opts.Password)
		if err != nil {
			return nil, SectionCounts{}, fmt.Errorf("encrypting credentials section: %w", err)
		}
		encMemory, err := s.cipher.EncryptSection(memory.Plain, opts.Password)
		if err != nil {
			return nil, SectionCounts{}, fmt.Errorf("encrypting memory section: %w", err)
		}
		credentials = NewEncryptedSection(encCreds)
		memory = NewEncryptedSection(encMemory)
	}

	archive := &Archive{
		Version:     Version,
		Exported:    exported,
		Agent:       identity,
		Encrypted:   opts.Encrypt,
		Credentials: credentials,
		Memory:      memory,
		Platforms:   map[string]any{},
	}

	s.logger.Info("archive exported",
		"agent", identity.Name,
		"credentials", counts.Credentials,
		"memory", counts.Memory,
		"encrypted", opts.Encrypt,
	)
	return archive, counts, nil
}
