// Package token issues and verifies the opaque access tokens that gate both
// driver submissions and public tracking reads.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy per token. 32 bytes keeps collision probability
// cryptographically negligible.
const tokenBytes = 32

// New returns a fresh URL-safe opaque token
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify compares a candidate against a stored token in constant time.
// Length mismatches are rejected after a comparison over the stored value so
// the timing does not reveal where the first differing byte sits.
func Verify(candidate, stored string) bool {
	if stored == "" {
		return false
	}
	if len(candidate) != len(stored) {
		// Burn a comparison of equal cost before rejecting.
		subtle.ConstantTimeCompare([]byte(stored), []byte(stored))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// Digest returns the hex SHA-256 of a token, used as the storage lookup key
// so the raw token is never matched by the database index.
func Digest(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// Fragment returns a short non-reversible handle for rate-limit keys and
// logs. Full tokens must never be logged.
func Fragment(tok string) string {
	return Digest(tok)[:8]
}
