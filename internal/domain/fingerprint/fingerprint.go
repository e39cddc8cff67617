// Package fingerprint computes content identities for analyzed strings.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a hex-encoded fingerprint.
const Size = sha256.Size * 2

// Of returns the lowercase hex SHA-256 digest of value's UTF-8 bytes.
func Of(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
