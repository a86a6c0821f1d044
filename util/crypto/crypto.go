// Package crypto provides cryptographic utilities for password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength = 16
	keyLength  = 64

	// scrypt cost parameters
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// HashPassword derives a salted scrypt key from the password and returns
// it as "hex(key).hex(salt)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword re-derives a key from the supplied password and the salt
// recovered from the stored record, and compares the keys in constant
// time. Malformed stored records verify as false instead of erroring, so
// a corrupt row cannot crash a login request.
func VerifyPassword(supplied, stored string) bool {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return false
	}

	key, err := hex.DecodeString(parts[0])
	if err != nil || len(key) != keyLength {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	suppliedKey, err := scrypt.Key([]byte(supplied), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, suppliedKey) == 1
}
