package auth_test

import (
	"testing"

	"github.com/shashiranjanraj/bodega/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenKinds(t *testing.T) {
	pair, err := auth.IssuePair("0b6c1c1e-8f5e-4c43-9a39-5b1f0b0e7a11", "admin")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "0b6c1c1e-8f5e-4c43-9a39-5b1f0b0e7a11", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = auth.ValidateToken(pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrWrongKind)

	_, err = auth.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrWrongKind)

	_, err = auth.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestTamperedToken(t *testing.T) {
	tok, err := auth.GenerateToken("u1", "operator")
	require.NoError(t, err)

	_, err = auth.ValidateToken(tok + "x")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "admin123"))
	assert.False(t, auth.CheckPassword(hash, "nope"))
}
