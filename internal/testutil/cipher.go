package testutil

import "agentpack/internal/encryption"

// FastCipher returns a GCMCipher with a low argon2id memory cost so
// encryption-heavy tests stay fast. Never use these parameters outside tests.
func FastCipher() *encryption.GCMCipher {
	return encryption.NewGCMCipherWithParams(1, 8*1024, 1)
}
