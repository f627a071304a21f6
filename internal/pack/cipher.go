package pack

// SectionCipher transforms a FileSection between its plain and encrypted
// forms using a password-derived symmetric key. Each EncryptSection call must
// generate fresh key material (salt, IV) — the two archive sections are
// always encrypted independently.
type SectionCipher interface {
	// EncryptSection serializes the plain section to its canonical byte
	// encoding and encrypts it under a key derived from the password.
	EncryptSection(plain *PlainSection, password string) (*EncryptedSection, error)

	// DecryptSection recomputes the key from the password and the stored
	// salt, authenticates, decrypts, and deserializes. Any tag mismatch or
	// malformed encoding is an error — never garbage output.
	DecryptSection(enc *EncryptedSection, password string) (*PlainSection, error)
}
