package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_CheckRoundTrip(t *testing.T) {
	// Arrange
	hash, err := HashPassword("sup3rsecret")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3rsecret", hash)

	// Act & Assert
	assert.True(t, CheckPassword("sup3rsecret", hash))
	assert.False(t, CheckPassword("wrong-pass", hash))
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	// Arrange
	first, err := HashPassword("sup3rsecret")
	require.NoError(t, err)

	second, err := HashPassword("sup3rsecret")
	require.NoError(t, err)

	// Assert
	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("sup3rsecret", second))
}
