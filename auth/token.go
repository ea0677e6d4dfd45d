package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// tokenBytes gives a 40 character hex key
const tokenBytes = 20

// TokenScheme is the Authorization header prefix clients send
const TokenScheme = "Token"

// GenerateTokenKey returns a new random opaque token key
func GenerateTokenKey() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenFromHeader extracts the key from an "Authorization: Token <key>" value.
// It returns false for a missing header, another scheme, or an empty key.
func TokenFromHeader(header string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, TokenScheme) {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, " ") {
		return "", false
	}
	return key, true
}
