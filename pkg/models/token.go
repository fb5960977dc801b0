package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of generated tokens. 10 bytes encode to 20 hex
// characters, which is enough to make both login and send tokens unguessable.
const tokenBytes = 10

// GenerateToken returns a new random opaque token (20 hex characters). The
// same generator serves login tokens and single-use send tokens.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error generating random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
