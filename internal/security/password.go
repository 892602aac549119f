package security

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

	// scrypt cost parameters; memory-hard on purpose.
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// HashPassword derives a salted scrypt hash. The salt travels inside the
// stored value ("saltHex:keyHex") so verification needs no external state.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltLength)

	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLength)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword recomputes the derivation with the stored salt and compares
// in constant time. Malformed stored values verify as false, never panic.
func VerifyPassword(plain, stored string) bool {
	saltHex, keyHex, ok := strings.Cut(stored, ":")

	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)

	if err != nil {
		return false
	}

	storedKey, err := hex.DecodeString(keyHex)

	if err != nil || len(storedKey) == 0 {
		return false
	}

	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, len(storedKey))

	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(storedKey, key) == 1
}
