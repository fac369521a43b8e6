package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() Hasher {
	return NewHasher(bcrypt.MinCost)
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher()

	for _, pw := range []string{"Secret1", "correct horse battery staple", "ünïcødé-9", ""} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, h.Verify(pw, hash), "password %q should verify", pw)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := newTestHasher()

	hash, err := h.Hash("Secret1")
	require.NoError(t, err)

	assert.False(t, h.Verify("Secret2", hash))
	assert.False(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := newTestHasher()

	a, err := h.Hash("Secret1")
	require.NoError(t, err)
	b, err := h.Hash("Secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("Secret1", a))
	assert.True(t, h.Verify("Secret1", b))
}

func TestVerify_MalformedHash(t *testing.T) {
	h := newTestHasher()

	for _, stored := range []string{"", "not-a-hash", "$2a$10$short", "$argon2id$v=19$m=1,t=1,p=1$AAAA$BBBB"} {
		assert.False(t, h.Verify("Secret1", stored), "stored %q", stored)
	}
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	h := NewHasher(1000).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	h = NewHasher(0).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestHash_TooLong(t *testing.T) {
	h := newTestHasher()

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err := h.Hash(string(long))
	assert.ErrorIs(t, err, ErrHashingPasswordFailed)
}
