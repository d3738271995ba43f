package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedMessage(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrInvalidCredentials, "Грешен имейл или парола. Моля, опитайте отново."},
		{ErrEmailAlreadyExists, "Този имейл адрес вече се използва от друг акаунт."},
		{ErrUserNotFound, "Няма потребител с този имейл адрес."},
		{ErrPasswordTooShort, "Паролата е твърде слаба. Използвайте поне 6 символа."},
		{ErrPasswordTooWeak, "Паролата е твърде слаба. Използвайте поне 6 символа."},
		{ErrInvalidEmail, "Невалиден имейл адрес."},
		{fmt.Errorf("refresh: %w", ErrInvalidCredentials), "Грешен имейл или парола. Моля, опитайте отново."},
		{errors.New("database on fire"), defaultAuthMessage},
		{nil, defaultAuthMessage},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LocalizedMessage(tt.err))
	}
}
