// Package crypto provides password hashing and session token utilities for Berea.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. N is the CPU/memory cost, r the block size, p the
// parallelism factor. 64-byte derived keys with 16-byte salts.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// hashSeparator joins the hex-encoded derived key and salt. "." never
// appears in hex output, so splitting is unambiguous.
const hashSeparator = "."

// HashPassword derives a salted scrypt hash from the password.
// The encoding is "hex(derivedKey).hex(salt)". Each call uses a fresh
// random salt, so hashing the same password twice yields different output.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return hex.EncodeToString(key) + hashSeparator + hex.EncodeToString(salt), nil
}

// VerifyPassword reports whether the password matches the encoded hash.
// Comparison is constant-time. A malformed encoding verifies as false;
// it never produces an error or a panic.
//
// Encodings without the separator are treated as plaintext records and
// compared in constant time. This compatibility carve-out exists for the
// configured bootstrap credential and for legacy rows that predate hashing.
func VerifyPassword(password, encoded string) bool {
	if encoded == "" {
		return false
	}

	if !strings.Contains(encoded, hashSeparator) {
		return subtle.ConstantTimeCompare([]byte(password), []byte(encoded)) == 1
	}

	parts := strings.SplitN(encoded, hashSeparator, 2)
	storedKey, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	if len(storedKey) != scryptKeyLen || len(salt) != saltLen {
		return false
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(storedKey, key) == 1
}
