package app

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"agentpack/internal/config"
	"agentpack/internal/database"
	"agentpack/internal/encryption"
	"agentpack/internal/fs"
	"agentpack/internal/pack"
	"agentpack/internal/store"
)

// App is the application layer between the CLI and the archive codec. It
// constructs all dependencies from config, exposes high-level operations that
// accept raw string parameters, and records each operation in the history
// database. The caller must call Close when done.
type App struct {
	cfg     *config.Config
	fsys    pack.FilesystemManager
	history pack.History
	service *pack.Service
	logger  pack.Logger
	clock   pack.Clock
	op      *pack.Operation
	logFile *os.File
}

// New creates a fully wired App from the given config. operation identifies
// the CLI command being run (e.g. "export", "import").
func New(cfg *config.Config, operation string) (*App, error) {
	fsys := fs.NewOSFilesystemManager()
	clock := pack.RealClock{}

	history, err := database.NewHistoryFromConfig(cfg.Database, cfg.AgentID)
	if err != nil {
		return nil, fmt.Errorf("creating history database: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		history.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	svc := pack.NewService(fsys, encryption.NewGCMCipher(), adapter, clock)

	a := &App{
		cfg:     cfg,
		fsys:    fsys,
		history: history,
		service: svc,
		logger:  adapter,
		clock:   clock,
		logFile: logFile,
	}
	if err := a.recordOperation(operation); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// recordOperation persists the operation record for this CLI invocation.
func (a *App) recordOperation(kind string) error {
	op := &pack.Operation{
		Kind:      kind,
		Status:    "running",
		StartedAt: a.clock.Now(),
	}
	id, err := a.history.RecordOperation(op)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	op.ID = id
	a.op = op
	return nil
}

// Export builds an archive from identity and options and writes it as
// indented JSON to outPath. Returns the archive and its fingerprint.
func (a *App) Export(identity pack.AgentIdentity, opts pack.ExportOptions, outPath string) (*pack.Archive, string, error) {
	archive, counts, err := a.service.Export(identity, opts)
	if err != nil {
		a.fail()
		return nil, "", err
	}

	fingerprint, err := pack.Fingerprint(archive)
	if err != nil {
		a.fail()
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := pack.Encode(&buf, archive); err != nil {
		a.fail()
		return nil, "", err
	}
	if err := a.fsys.WriteFile(outPath, buf.Bytes()); err != nil {
		a.fail()
		return nil, "", fmt.Errorf("writing archive file: %w", err)
	}

	a.op.ArchivePath = outPath
	a.op.Fingerprint = fingerprint
	a.op.AgentName = identity.Name
	a.op.FileCount = int64(counts.Credentials + counts.Memory)
	return archive, fingerprint, nil
}

// Import reads an archive file and restores its contents under targetDir.
func (a *App) Import(file, targetDir, password string, overwrite bool) (*pack.ImportResult, error) {
	archive, err := a.loadArchive(file)
	if err != nil {
		a.fail()
		return nil, err
	}

	result, err := a.service.Import(archive, pack.ImportOptions{
		TargetDir: targetDir,
		Password:  password,
		Overwrite: overwrite,
	})
	if err != nil {
		a.fail()
		return nil, err
	}

	if fingerprint, err := pack.Fingerprint(archive); err == nil {
		a.op.Fingerprint = fingerprint
	}
	a.op.ArchivePath = file
	a.op.AgentName = result.Agent.Name
	a.op.FileCount = int64(result.Restored.Credentials + result.Restored.Memory)
	return result, nil
}

// VerifyReport summarizes an archive for the verify command. Section counts
// are -1 when a section is encrypted and cannot be counted without a
// password.
type VerifyReport struct {
	Version          string
	AgentName        string
	AgentEmail       string
	Exported         time.Time
	Fingerprint      string
	Encrypted        bool
	CredentialsCount int
	MemoryCount      int
}

// Verify reads an archive file and reports its identity and fingerprint
// without writing anything.
func (a *App) Verify(file string) (*VerifyReport, error) {
	archive, err := a.loadArchive(file)
	if err != nil {
		a.fail()
		return nil, err
	}

	fingerprint, err := pack.Fingerprint(archive)
	if err != nil {
		a.fail()
		return nil, err
	}

	report := &VerifyReport{
		Version:          archive.Version,
		AgentName:        archive.Agent.Name,
		AgentEmail:       archive.Agent.Email,
		Exported:         archive.Exported,
		Fingerprint:      fingerprint,
		Encrypted:        archive.Encrypted,
		CredentialsCount: sectionCount(archive.Credentials),
		MemoryCount:      sectionCount(archive.Memory),
	}

	a.op.ArchivePath = file
	a.op.Fingerprint = fingerprint
	a.op.AgentName = archive.Agent.Name
	return report, nil
}

// sectionCount returns the number of files in a plain section, or -1 for an
// encrypted one.
func sectionCount(s pack.FileSection) int {
	if s.Plain == nil {
		return -1
	}
	return len(s.Plain.Files)
}

// Push copies a local archive file into the named store. An empty storeName
// selects the first configured store.
func (a *App) Push(file, storeName string) error {
	st, err := a.openStore(storeName)
	if err != nil {
		a.fail()
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		a.fail()
		return fmt.Errorf("opening archive file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.fail()
		return fmt.Errorf("stat archive file: %w", err)
	}

	name := info.Name()
	if err := st.Put(name, f, info.Size()); err != nil {
		a.fail()
		return fmt.Errorf("pushing archive: %w", err)
	}

	a.op.ArchivePath = name
	a.logger.Info("archive pushed", "name", name, "store", storeName)
	return nil
}

// Pull copies the named archive from a store to outPath.
func (a *App) Pull(name, storeName, outPath string) error {
	st, err := a.openStore(storeName)
	if err != nil {
		a.fail()
		return err
	}

	var buf bytes.Buffer
	if err := st.Get(name, &buf); err != nil {
		a.fail()
		return fmt.Errorf("pulling archive: %w", err)
	}
	if err := a.fsys.WriteFile(outPath, buf.Bytes()); err != nil {
		a.fail()
		return fmt.Errorf("writing archive file: %w", err)
	}

	a.op.ArchivePath = outPath
	a.logger.Info("archive pulled", "name", name, "store", storeName, "output", outPath)
	return nil
}

// History returns the most recent recorded operations.
func (a *App) History(limit int) ([]*pack.Operation, error) {
	ops, err := a.history.RecentOperations(limit)
	if err != nil {
		a.fail()
		return nil, err
	}
	return ops, nil
}

// loadArchive reads and decodes an archive file.
func (a *App) loadArchive(file string) (*pack.Archive, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening archive file: %w", err)
	}
	defer f.Close()
	return pack.Decode(f)
}

// openStore looks up a store by name in the config and constructs it. An
// empty name selects the first configured store.
func (a *App) openStore(name string) (pack.Store, error) {
	if len(a.cfg.Stores) == 0 {
		return nil, fmt.Errorf("no stores configured")
	}
	if name == "" {
		return store.NewStoreFromConfig(a.cfg.Stores[0])
	}
	for _, sc := range a.cfg.Stores {
		if sc.Name == name {
			return store.NewStoreFromConfig(sc)
		}
	}
	return nil, fmt.Errorf("store not found in config: %s", name)
}

// fail marks the current operation as failed.
func (a *App) fail() {
	if a.op != nil {
		a.op.Status = "error"
	}
}

// Close finalizes the operation record and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op != nil {
		if a.op.Status == "running" {
			a.op.Status = "success"
		}
		err := a.history.FinishOperation(a.op.ID, a.op.Status, a.op.Fingerprint, a.op.AgentName, a.op.FileCount, a.clock.Now())
		if err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.history.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing history database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
