package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "bulgargpt")
	userID := uuid.New()
	sessionID := uuid.New().String()

	access, refresh, err := svc.GenerateTokenPair(userID, "ivan@example.com", sessionID)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ivan@example.com", claims.Email)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, "access", claims.TokenType)

	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeEnforced(t *testing.T) {
	svc := NewJWTService("test-secret", "bulgargpt")
	access, refresh, err := svc.GenerateTokenPair(uuid.New(), "a@b.bg", uuid.New().String())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	access, _, err := NewJWTService("secret-one", "bulgargpt").GenerateTokenPair(uuid.New(), "a@b.bg", uuid.New().String())
	require.NoError(t, err)

	_, err = NewJWTService("secret-two", "bulgargpt").ValidateToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromBearer("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromBearer("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromBearer(""))
}
