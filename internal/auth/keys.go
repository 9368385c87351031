package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// saltSize is the number of random bytes per salt.
	saltSize = 256
	// iterations is the PBKDF2 iteration count.
	iterations = 4096
	// keySize is the derived key length in bytes.
	keySize = 256
)

// NewSalt generates a random hex-encoded salt.
func NewSalt() (string, error) {
	buf := make([]byte, saltSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DeriveKey stretches password with the hex-encoded salt and returns the
// hex-encoded derived key. SHA-1 is kept as the PRF to stay compatible with
// credentials derived by earlier deployments.
func DeriveKey(password, salt string) (string, error) {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), rawSalt, iterations, keySize, sha1.New)
	return hex.EncodeToString(key), nil
}

// keysEqual compares two hex-encoded keys in constant time.
func keysEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
