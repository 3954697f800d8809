package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint returns a deterministic base64url SHA-256 digest of s. Used to
// bind password-reset tokens to the credential they were issued against.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
