package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes gives 192 bits of entropy, comfortably above the
// 128-bit floor for unguessable session identifiers.
const sessionTokenBytes = 24

// GenerateSessionToken generates a cryptographically secure URL-safe
// session identifier.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read entropy source: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
