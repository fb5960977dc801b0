package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "hunter2")

	// Fresh salt per hash.
	other, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	t.Run("Match", func(t *testing.T) {
		ok, err := VerifyPassword("hunter2", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Mismatch", func(t *testing.T) {
		ok, err := VerifyPassword("wrong", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("MalformedHash", func(t *testing.T) {
		_, err := VerifyPassword("hunter2", "not-a-phc-string")
		assert.ErrorIs(t, err, ErrInvalidHash)
	})

	t.Run("CleartextIsNotAValidHash", func(t *testing.T) {
		_, err := VerifyPassword("hunter2", "hunter2")
		assert.Error(t, err)
	})
}
