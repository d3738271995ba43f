package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsRestrictedWords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"empty", "", false},
		{"clean english", "a beautiful mountain landscape at sunset", false},
		{"clean bulgarian", "красива планина по залез", false},
		{"english match", "show me porn", true},
		{"english match uppercase", "PORN please", true},
		{"english match embedded", "superporno", true},
		{"bulgarian match", "нарисувай порно", true},
		{"bulgarian match mixed case", "ХенТАЙ картинка", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsRestrictedWords(tt.text))
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("котка с шапка"))
	assert.ErrorIs(t, Check("изпрати ми порно"), ErrContentRejected)
}
