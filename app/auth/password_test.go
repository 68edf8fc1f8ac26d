package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, hasher.Compare(hash, "secret123"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordMismatch)

	again, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewHasherCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 5, NewHasher(5).cost)
}

func TestCompareMalformedHash(t *testing.T) {
	err := NewHasher(bcrypt.MinCost).Compare("not-a-hash", "secret123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHasherLongPasswords(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		other    string
	}{
		{"multibyte over 72 bytes", strings.Repeat("é", 40), strings.Repeat("é", 39) + "e"},
		{"ascii over 72 bytes", strings.Repeat("a", 80), strings.Repeat("a", 79) + "b"},
		{"differs after byte 72", strings.Repeat("x", 72) + "tail-one", strings.Repeat("x", 72) + "tail-two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.NoError(t, hasher.Compare(hash, tt.password))
			assert.ErrorIs(t, hasher.Compare(hash, tt.other), ErrPasswordMismatch)
		})
	}
}

func TestPrehashIsPrintable(t *testing.T) {
	digest := prehash("\x00secret")
	assert.Len(t, digest, 44)
	assert.NotContains(t, string(digest), "\x00")
}
