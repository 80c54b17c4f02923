// Package crypto provides password hashing and session token utilities for Berea.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SessionTokenBytes is the entropy of a session token (32 bytes, 64 hex chars).
const SessionTokenBytes = 32

// GenerateSessionToken generates a random, unguessable session token.
// Returns the token as a 64-character hex string.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateSecret generates a random 32-byte secret for cookie signing.
// Returns the secret as a 64-character hex string.
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SignToken produces the cookie value for a session token:
// "token.hex(hmac-sha256(token, secret))". The signature lets the server
// reject tampered cookies before touching the session store.
func SignToken(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return token + "." + hex.EncodeToString(mac.Sum(nil))
}

// ParseSignedToken verifies a signed cookie value and returns the bare token.
// Returns false for missing, malformed or forged signatures.
func ParseSignedToken(value, secret string) (string, bool) {
	idx := strings.LastIndex(value, ".")
	if idx <= 0 || idx == len(value)-1 {
		return "", false
	}

	token, sig := value[:idx], value[idx+1:]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return token, true
}
