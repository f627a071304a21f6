package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"agentpack/internal/pack"
)

// Algorithm is the cipher identifier written to encrypted sections.
const Algorithm = "aes-256-gcm"

const (
	saltSize = 32
	ivSize   = 16
	tagSize  = 16
)

// GCMCipher implements pack.SectionCipher with AES-256-GCM. Keys are derived
// from the password with argon2id; the parameters are recorded on each
// section so archives remain self-describing when they are tuned. Sections
// without a recorded KDF fall back to the legacy SHA-256 derivation.
type GCMCipher struct {
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
}

var _ pack.SectionCipher = (*GCMCipher)(nil)

// NewGCMCipher creates a GCMCipher with the default argon2id parameters.
func NewGCMCipher() *GCMCipher {
	return NewGCMCipherWithParams(defaultArgonTime, defaultArgonMemory, defaultArgonThreads)
}

// NewGCMCipherWithParams creates a GCMCipher with explicit argon2id
// parameters. Tests use low memory cost to stay fast.
func NewGCMCipherWithParams(time, memory uint32, threads uint8) *GCMCipher {
	return &GCMCipher{
		argonTime:    time,
		argonMemory:  memory,
		argonThreads: threads,
	}
}

// EncryptSection serializes the plain section to canonical JSON bytes and
// seals them under a freshly salted key and IV.
func (c *GCMCipher) EncryptSection(plain *pack.PlainSection, password string) (*pack.EncryptedSection, error) {
	if password == "" {
		return nil, fmt.Errorf("password is empty")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	params := &pack.KDFParams{
		Algorithm: "argon2id",
		Time:      c.argonTime,
		Memory:    c.argonMemory,
		Threads:   c.argonThreads,
		KeyLen:    keySize,
	}
	key, err := deriveKey(password, salt, params)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	plaintext, err := json.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("serializing section: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return &pack.EncryptedSection{
		Algorithm: Algorithm,
		IV:        hex.EncodeToString(iv),
		Salt:      hex.EncodeToString(salt),
		AuthTag:   hex.EncodeToString(tag),
		Data:      hex.EncodeToString(ciphertext),
		KDF:       params,
	}, nil
}

// DecryptSection authenticates and decrypts a section. The tag is verified
// before any plaintext is returned; a wrong password surfaces as an
// authentication failure, never as garbage output.
func (c *GCMCipher) DecryptSection(enc *pack.EncryptedSection, password string) (*pack.PlainSection, error) {
	if enc.Algorithm != Algorithm {
		return nil, fmt.Errorf("unknown cipher algorithm: %q", enc.Algorithm)
	}

	iv, err := decodeHexField("iv", enc.IV, ivSize)
	if err != nil {
		return nil, err
	}
	salt, err := decodeHexField("salt", enc.Salt, saltSize)
	if err != nil {
		return nil, err
	}
	tag, err := decodeHexField("authTag", enc.AuthTag, tagSize)
	if err != nil {
		return nil, err
	}
	ciphertext, err := hex.DecodeString(enc.Data)
	if err != nil {
		return nil, fmt.Errorf("malformed data field: %w", err)
	}

	key, err := deriveKey(password, salt, enc.KDF)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	var plain pack.PlainSection
	if err := json.Unmarshal(plaintext, &plain); err != nil {
		return nil, fmt.Errorf("deserializing section: %w", err)
	}
	if plain.Files == nil {
		plain.Files = []pack.FileRecord{}
	}
	return &plain, nil
}

// newGCM builds an AES-256-GCM AEAD with the 16-byte IV the wire format uses.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}

// decodeHexField decodes a fixed-width hex field, rejecting wrong lengths.
func decodeHexField(name, value string, size int) ([]byte, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("malformed %s field: %w", name, err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("malformed %s field: got %d bytes, want %d", name, len(raw), size)
	}
	return raw, nil
}
