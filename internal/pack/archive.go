package pack

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Version is the archive schema version this codec reads and writes.
// Import rejects any other version outright — there is no cross-version
// compatibility layer.
const Version = "1.0"

// FileRecord is a single collected file: its caller-supplied relative path,
// its content as UTF-8 text, and the instant it was read.
type FileRecord struct {
	Path    string    `json:"path"`
	Content string    `json:"content"`
	Updated time.Time `json:"updated"`
}

// PlainSection is the unencrypted form of a FileSection.
type PlainSection struct {
	Files []FileRecord `json:"files"`
}

// KDFParams describes the key derivation applied to the password before
// encryption, so archives remain self-describing when parameters are tuned.
// The salt lives in the enclosing EncryptedSection. Sections written by the
// legacy scheme carry no KDF params and fall back to a single SHA-256 pass.
type KDFParams struct {
	Algorithm string `json:"algorithm"`
	Time      uint32 `json:"time"`
	Memory    uint32 `json:"memory"`
	Threads   uint8  `json:"threads"`
	KeyLen    uint32 `json:"keylen"`
}

// EncryptedSection is the encrypted form of a FileSection. All binary fields
// are fixed-width hex encodings.
type EncryptedSection struct {
	Algorithm string     `json:"algorithm"`
	IV        string     `json:"iv"`
	Salt      string     `json:"salt"`
	AuthTag   string     `json:"authTag"`
	Data      string     `json:"data"`
	KDF       *KDFParams `json:"kdf,omitempty"`
}

// FileSection is the credentials or memory half of an Archive. It is a tagged
// union: exactly one of Plain or Encrypted is set. The wire format
// discriminates on the presence of the "encrypted" flag.
type FileSection struct {
	Plain     *PlainSection
	Encrypted *EncryptedSection
}

// NewPlainSection builds a plain FileSection from collected records.
func NewPlainSection(files []FileRecord) FileSection {
	if files == nil {
		files = []FileRecord{}
	}
	return FileSection{Plain: &PlainSection{Files: files}}
}

// NewEncryptedSection builds an encrypted FileSection.
func NewEncryptedSection(enc *EncryptedSection) FileSection {
	return FileSection{Encrypted: enc}
}

// IsEncrypted reports whether the section is in its encrypted form.
func (s FileSection) IsEncrypted() bool {
	return s.Encrypted != nil
}

// encryptedSectionWire is EncryptedSection plus the discriminator flag.
type encryptedSectionWire struct {
	EncryptedFlag bool       `json:"encrypted"`
	Algorithm     string     `json:"algorithm"`
	IV            string     `json:"iv"`
	Salt          string     `json:"salt"`
	AuthTag       string     `json:"authTag"`
	Data          string     `json:"data"`
	KDF           *KDFParams `json:"kdf,omitempty"`
}

// MarshalJSON emits the plain form as {"files":[...]} and the encrypted form
// with an explicit "encrypted":true discriminator.
func (s FileSection) MarshalJSON() ([]byte, error) {
	switch {
	case s.Plain != nil && s.Encrypted != nil:
		return nil, fmt.Errorf("file section has both plain and encrypted forms")
	case s.Encrypted != nil:
		return json.Marshal(encryptedSectionWire{
			EncryptedFlag: true,
			Algorithm:     s.Encrypted.Algorithm,
			IV:            s.Encrypted.IV,
			Salt:          s.Encrypted.Salt,
			AuthTag:       s.Encrypted.AuthTag,
			Data:          s.Encrypted.Data,
			KDF:           s.Encrypted.KDF,
		})
	case s.Plain != nil:
		if s.Plain.Files == nil {
			return json.Marshal(PlainSection{Files: []FileRecord{}})
		}
		return json.Marshal(s.Plain)
	default:
		return nil, fmt.Errorf("file section has no form")
	}
}

// UnmarshalJSON discriminates on the "encrypted" flag.
func (s *FileSection) UnmarshalJSON(data []byte) error {
	var probe struct {
		Encrypted bool `json:"encrypted"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decoding file section: %w", err)
	}

	if probe.Encrypted {
		var wire encryptedSectionWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("decoding encrypted section: %w", err)
		}
		s.Plain = nil
		s.Encrypted = &EncryptedSection{
			Algorithm: wire.Algorithm,
			IV:        wire.IV,
			Salt:      wire.Salt,
			AuthTag:   wire.AuthTag,
			Data:      wire.Data,
			KDF:       wire.KDF,
		}
		return nil
	}

	var plain PlainSection
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("decoding plain section: %w", err)
	}
	if plain.Files == nil {
		plain.Files = []FileRecord{}
	}
	s.Plain = &plain
	s.Encrypted = nil
	return nil
}

// AgentIdentity identifies the agent an archive belongs to.
type AgentIdentity struct {
	Name     string         `json:"name"`
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"metadata"`
	Created  time.Time      `json:"created"`
}

// Archive is the complete backup record: identity plus the credentials and
// memory sections. Archives are immutable value objects — built once by
// Export, only ever read afterwards. The archive-level Encrypted flag is true
// iff both sections are in encrypted form.
//
// Platforms is a reserved extension point with no defined semantics yet; it is
// always emitted empty.
type Archive struct {
	Version     string         `json:"version"`
	Exported    time.Time      `json:"exported"`
	Agent       AgentIdentity  `json:"agent"`
	Encrypted   bool           `json:"encrypted,omitempty"`
	Credentials FileSection    `json:"credentials"`
	Memory      FileSection    `json:"memory"`
	Platforms   map[string]any `json:"platforms"`
}

// Encode writes the archive as indented JSON.
func Encode(w io.Writer, a *Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	return nil
}

// Decode reads an archive from JSON. It does not validate the version — that
// is Import's job, so that Decode can still inspect foreign archives.
func Decode(r io.Reader) (*Archive, error) {
	var a Archive
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	if a.Platforms == nil {
		a.Platforms = map[string]any{}
	}
	if a.Agent.Metadata == nil {
		a.Agent.Metadata = map[string]any{}
	}
	return &a, nil
}
