package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashProfileRef hashes a profile reference (usually an email) for
// GDPR-safe logging and persistence. Only the first 12 hex characters
// are kept; raw emails must never reach logs or the audit store.
func HashProfileRef(profileRef string) string {
	sum := sha256.Sum256([]byte(profileRef))
	return hex.EncodeToString(sum[:])[:12]
}
