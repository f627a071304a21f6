package pack

import "fmt"

// ValidationError reports a missing or invalid required identity field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s is required", e.Field)
}

// ConfigurationError reports a precondition failure in the caller-supplied
// options, such as requesting encryption without a password. Distinct from
// DecryptionError: a missing password and a wrong password are different
// failure causes.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// VersionError reports an archive whose schema version does not exactly match
// the supported version. No partial-compatibility parsing is attempted.
type VersionError struct {
	Got  string
	Want string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported archive version %q (supported: %q)", e.Got, e.Want)
}

// DecryptionError reports an authentication-tag mismatch, malformed
// ciphertext encoding, or unknown cipher algorithm while decrypting a section.
// It wraps the underlying cause.
type DecryptionError struct {
	Section string
	Err     error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decrypting %s section: %v", e.Section, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }
