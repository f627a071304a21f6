package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
)

// fingerprintLength is the number of hex characters in a fingerprint.
const fingerprintLength = 16

// Fingerprint derives a short verification tag from exactly the archive's
// identity and export timestamp — deliberately excluding file contents and
// the encryption state, so re-encrypting or re-packing the same export
// fingerprints identically while any identity or timestamp change does not.
//
// The payload is canonicalized per RFC 8785 (JCS) before hashing, so two
// independent implementations agree bit-for-bit regardless of map key order
// or whitespace.
func Fingerprint(a *Archive) (string, error) {
	payload := struct {
		Agent    AgentIdentity `json:"agent"`
		Exported time.Time     `json:"exported"`
	}{
		Agent:    a.Agent,
		Exported: a.Exported,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializing fingerprint payload: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalizing fingerprint payload: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:fingerprintLength], nil
}
