package util

import (
	"testing"
	"time"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	// Arrange
	manager := NewJWTManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	// Act
	token, err := manager.GenerateAccessToken(userID, "seller@omgplace.io", entity.RoleSeller)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "seller@omgplace.io", claims.Email)
	assert.Equal(t, entity.RoleSeller, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	// Arrange
	manager := NewJWTManager("test-secret", 15*time.Minute)
	other := NewJWTManager("another-secret", 15*time.Minute)

	token, err := manager.GenerateAccessToken(uuid.New(), "buyer@omgplace.io", entity.RoleBuyer)
	require.NoError(t, err)

	// Act
	claims, err := other.ValidateToken(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	// Arrange
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateAccessToken(uuid.New(), "buyer@omgplace.io", entity.RoleBuyer)
	require.NoError(t, err)

	// Act
	claims, err := manager.ValidateToken(token)

	// Assert
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTManager_GarbageToken(t *testing.T) {
	// Arrange
	manager := NewJWTManager("test-secret", 15*time.Minute)

	// Act
	claims, err := manager.ValidateToken("not.a.token")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
