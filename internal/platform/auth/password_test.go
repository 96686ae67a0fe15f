package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("Doctor@123")
	require.NoError(t, err)
	assert.NotEqual(t, "Doctor@123", hash)

	ok, err := h.Verify(hash, "Doctor@123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("12345"), ErrWeakPassword)
	assert.NoError(t, ValidatePassword("123456"))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost).Verify("not-a-hash", "password")
	assert.Error(t, err)
}
