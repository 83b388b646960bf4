package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RandomSize is the entropy of single-use tokens in bytes.
const RandomSize = 32

// NewRandom returns a hex-encoded random token of RandomSize bytes.
func NewRandom() (string, error) {
	b := make([]byte, RandomSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash derives the stored verifier of a token. It is one-way and deterministic.
func Hash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
