// Package password stores and checks user credentials.
//
// Hashes are bcrypt strings: every call to Hash draws a fresh salt, so the
// same password never hashes to the same value twice. Verification is done by
// bcrypt itself and compares in constant time.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrHashingPasswordFailed = errors.New("hashing password failed")

// Hasher turns plaintext passwords into opaque stored hashes and back into a
// yes/no answer.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewHasher returns a bcrypt Hasher. A cost outside bcrypt's accepted range
// falls back to bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingPasswordFailed, err)
	}
	return string(hashed), nil
}

// Verify never fails loudly: a malformed stored hash is just a mismatch.
func (h *bcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
