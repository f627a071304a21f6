package pack

// Service is the archive codec: it builds archives from on-disk files
// (Export) and writes archives back to disk (Import). It holds no mutable
// state of its own — every call carries its full configuration in the
// options value, so one Service is safe to use concurrently with different
// configurations.
type Service struct {
	fsys   FilesystemManager
	cipher SectionCipher
	logger Logger
	clock  Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(fsys FilesystemManager, cipher SectionCipher, logger Logger, clock Clock) *Service {
	return &Service{
		fsys:   fsys,
		cipher: cipher,
		logger: logger,
		clock:  clock,
	}
}
