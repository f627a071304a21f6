package encryption

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"

	"agentpack/internal/pack"
)

// Argon2id parameters for newly written sections. Tunable without breaking
// old archives because every encrypted section records the parameters it was
// written with.
const (
	defaultArgonTime    = 1
	defaultArgonMemory  = 64 * 1024 // KiB
	defaultArgonThreads = 4
)

// keySize is the AES-256 key length in bytes.
const keySize = 32

// deriveKey derives the section key from the password and stored salt. A nil
// params means the section predates the self-describing KDF field and was
// written with the legacy single-pass scheme.
func deriveKey(password string, salt []byte, params *pack.KDFParams) ([]byte, error) {
	if params == nil {
		return legacyKey(password, salt), nil
	}

	switch params.Algorithm {
	case "argon2id":
		if params.KeyLen != keySize {
			return nil, fmt.Errorf("unsupported key length %d", params.KeyLen)
		}
		return argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen), nil
	default:
		return nil, fmt.Errorf("unknown KDF algorithm: %q", params.Algorithm)
	}
}

// legacyKey is the original derivation: one SHA-256 pass over password||salt.
// Fast to brute-force offline — kept only so old archives stay importable.
func legacyKey(password string, salt []byte) []byte {
	h := sha256.New()
	h.Write([]byte(password))
	h.Write(salt)
	return h.Sum(nil)
}
