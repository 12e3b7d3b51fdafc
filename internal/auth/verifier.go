// Package auth provides password hashing and verification. Digests are
// argon2id with the parameters and salt encoded alongside the hash, so
// parameters can change without invalidating stored credentials.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Verifier hashes plaintext credentials and verifies them against digests.
type Verifier interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

const (
	argonTime      = 1
	argonMemory    = 64 * 1024
	argonThreads   = 4
	argonKeyLength = 32
	saltLength     = 16
)

var ErrMalformedDigest = errors.New("malformed password digest")

// Argon2Verifier is the argon2id implementation of Verifier.
type Argon2Verifier struct{}

// NewVerifier returns the default argon2id verifier.
func NewVerifier() Argon2Verifier {
	return Argon2Verifier{}
}

// Hash derives an argon2id digest with a fresh random salt.
func (Argon2Verifier) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the digest. Malformed digests
// verify as false.
func (Argon2Verifier) Verify(plaintext, digest string) bool {
	salt, key, memory, iterations, threads, err := decodeDigest(digest)
	if err != nil {
		return false
	}

	derived := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

func decodeDigest(digest string) (salt, key []byte, memory, iterations uint32, threads uint8, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}
	return salt, key, memory, iterations, threads, nil
}
