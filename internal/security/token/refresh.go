package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RefreshTokenBytes is the amount of randomness behind every refresh token.
const RefreshTokenBytes = 64

// NewRefreshToken returns an opaque bearer key. It carries no claims and is
// only ever checked by exact match against the stored value.
func NewRefreshToken() (string, error) {
	b := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
