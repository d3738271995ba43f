package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("parola1")
	require.NoError(t, err)
	assert.NotEqual(t, "parola1", hash)

	assert.True(t, CheckPassword("parola1", hash))
	assert.False(t, CheckPassword("parola2", hash))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected error
	}{
		{"valid", "parola1", nil},
		{"too short", "pa1", ErrPasswordTooShort},
		{"letters only", "parolata", ErrPasswordTooWeak},
		{"digits only", "12345678", ErrPasswordTooWeak},
		{"cyrillic letters count", "парола1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}
