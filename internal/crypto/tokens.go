// Package crypto provides secure random identifier generation.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Base62 alphabet for short identifiers
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateSessionID creates a secure random session ID.
// Returns base64-encoded 32 bytes.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateID creates a prefixed random identifier for database rows.
// Format: {prefix}_{16_base62_chars}
func GenerateID(prefix string) (string, error) {
	encoded, err := generateBase62(16)
	if err != nil {
		return "", err
	}
	return prefix + "_" + encoded, nil
}

// generateBase62 generates n random base62 characters.
func generateBase62(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	result := make([]byte, n)
	for i := 0; i < n; i++ {
		// Modulo mapping is not perfectly uniform but is sufficient here
		result[i] = base62Chars[bytes[i]%62]
	}

	return string(result), nil
}
