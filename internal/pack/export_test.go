package pack_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"agentpack/internal/pack"
	"agentpack/internal/testutil"
)

// newExportService builds a Service over a mock filesystem pre-loaded with
// one credential and one memory file.
func newExportService(t *testing.T) (*pack.Service, *testutil.MockFilesystemManager, *testutil.StubClock) {
	t.Helper()
	fsys := testutil.NewMockFilesystemManager()
	fsys.AddFile(filepath.Join("/work", "api.key"), []byte("secret123"))
	fsys.AddFile(filepath.Join("/work", "MEMORY.md"), []byte("# Memory\nTest content"))

	clock := testutil.FixedClock()
	svc := pack.NewService(fsys, testutil.FastCipher(), pack.NewNopLogger(), clock)
	return svc, fsys, clock
}

func defaultExportOptions() pack.ExportOptions {
	return pack.ExportOptions{
		WorkDir:         "/work",
		CredentialPaths: []string{"api.key"},
		MemoryPaths:     []string{"MEMORY.md"},
	}
}

func TestService_Export(t *testing.T) {
	t.Run("unencrypted export", func(t *testing.T) {
		svc, _, clock := newExportService(t)

		identity := pack.AgentIdentity{Name: "TestAgent", Email: "test@example.com"}
		archive, counts, err := svc.Export(identity, defaultExportOptions())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		if archive.Version != "1.0" {
			t.Errorf("version = %q, want %q", archive.Version, "1.0")
		}
		if archive.Encrypted {
			t.Error("encrypted = true, want false")
		}
		if !archive.Exported.Equal(clock.Now()) {
			t.Errorf("exported = %v, want %v", archive.Exported, clock.Now())
		}
		if len(archive.Credentials.Plain.Files) != 1 {
			t.Fatalf("credentials: got %d files, want 1", len(archive.Credentials.Plain.Files))
		}
		if archive.Credentials.Plain.Files[0].Content != "secret123" {
			t.Errorf("credential content = %q", archive.Credentials.Plain.Files[0].Content)
		}
		if len(archive.Memory.Plain.Files) != 1 {
			t.Fatalf("memory: got %d files, want 1", len(archive.Memory.Plain.Files))
		}
		if archive.Platforms == nil || len(archive.Platforms) != 0 {
			t.Errorf("platforms = %v, want empty map", archive.Platforms)
		}
		if counts.Credentials != 1 || counts.Memory != 1 {
			t.Errorf("counts = %+v, want 1/1", counts)
		}
	})

	t.Run("encrypted export", func(t *testing.T) {
		svc, _, _ := newExportService(t)

		opts := defaultExportOptions()
		opts.Encrypt = true
		opts.Password = "testpass123"

		archive, counts, err := svc.Export(pack.AgentIdentity{Name: "TestAgent"}, opts)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		if counts.Credentials != 1 || counts.Memory != 1 {
			t.Errorf("counts = %+v, want 1/1", counts)
		}
		if !archive.Encrypted {
			t.Error("encrypted = false, want true")
		}
		for name, section := range map[string]pack.FileSection{
			"credentials": archive.Credentials,
			"memory":      archive.Memory,
		} {
			if !section.IsEncrypted() {
				t.Fatalf("%s section not encrypted", name)
			}
			enc := section.Encrypted
			if enc.Algorithm != "aes-256-gcm" {
				t.Errorf("%s algorithm = %q", name, enc.Algorithm)
			}
			if enc.IV == "" || enc.Salt == "" || enc.AuthTag == "" || enc.Data == "" {
				t.Errorf("%s section has empty cipher fields: %+v", name, enc)
			}
		}

		// Sections are encrypted independently: fresh key material each.
		if archive.Credentials.Encrypted.Salt == archive.Memory.Encrypted.Salt {
			t.Error("sections share a salt")
		}
		if archive.Credentials.Encrypted.IV == archive.Memory.Encrypted.IV {
			t.Error("sections share an IV")
		}
	})

	t.Run("empty name fails with ValidationError", func(t *testing.T) {
		svc, _, _ := newExportService(t)

		_, _, err := svc.Export(pack.AgentIdentity{}, defaultExportOptions())
		var verr *pack.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want ValidationError", err)
		}
	})

	t.Run("encrypt without password fails with ConfigurationError", func(t *testing.T) {
		svc, _, _ := newExportService(t)

		opts := defaultExportOptions()
		opts.Encrypt = true

		_, _, err := svc.Export(pack.AgentIdentity{Name: "TestAgent"}, opts)
		var cerr *pack.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Fatalf("error = %v, want ConfigurationError", err)
		}
	})

	t.Run("created defaults to export instant", func(t *testing.T) {
		svc, _, clock := newExportService(t)

		archive, _, err := svc.Export(pack.AgentIdentity{Name: "TestAgent"}, defaultExportOptions())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if !archive.Agent.Created.Equal(clock.Now()) {
			t.Errorf("created = %v, want %v", archive.Agent.Created, clock.Now())
		}
	})

	t.Run("caller-supplied created is kept", func(t *testing.T) {
		svc, _, _ := newExportService(t)

		created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
		archive, _, err := svc.Export(pack.AgentIdentity{Name: "TestAgent", Created: created}, defaultExportOptions())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if !archive.Agent.Created.Equal(created) {
			t.Errorf("created = %v, want %v", archive.Agent.Created, created)
		}
	})

	t.Run("missing source file still succeeds", func(t *testing.T) {
		fsys := testutil.NewMockFilesystemManager()
		fsys.AddFile(filepath.Join("/work", "present.key"), []byte("k"))

		logger := testutil.NewRecordingLogger()
		svc := pack.NewService(fsys, testutil.FastCipher(), logger, testutil.FixedClock())

		archive, counts, err := svc.Export(pack.AgentIdentity{Name: "TestAgent"}, pack.ExportOptions{
			WorkDir:         "/work",
			CredentialPaths: []string{"present.key", "missing.key"},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if len(archive.Credentials.Plain.Files) != 1 {
			t.Fatalf("got %d credential files, want 1", len(archive.Credentials.Plain.Files))
		}
		// The skipped source must not count as collected.
		if counts.Credentials != 1 || counts.Memory != 0 {
			t.Errorf("counts = %+v, want 1/0", counts)
		}
		if archive.Credentials.Plain.Files[0].Path != "present.key" {
			t.Errorf("path = %q", archive.Credentials.Plain.Files[0].Path)
		}
		if len(logger.Warnings) != 1 {
			t.Errorf("got %d warnings, want 1", len(logger.Warnings))
		}
	})
}
