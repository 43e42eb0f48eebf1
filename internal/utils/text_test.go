package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSkippableText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"spaces only", "   ", true},
		{"digits", "12345", true},
		{"digits with separators", "1,234.56", true},
		{"digits with spaces", "12 34", true},
		{"fullwidth digits and punctuation", "１２３。，", true},
		{"plain text", "hello", false},
		{"cjk text", "你好嗎", false},
		{"mixed digits and text", "abc123", false},
		{"punctuation only", ".,. ,", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSkippableText(tt.text))
		})
	}
}

func TestGenerateSecureRandomString(t *testing.T) {
	s1 := GenerateSecureRandomString(22)
	s2 := GenerateSecureRandomString(22)

	assert.Len(t, s1, 22)
	assert.Len(t, s2, 22)
	assert.NotEqual(t, s1, s2)

	// Zero length falls back to the default token size
	assert.Len(t, GenerateSecureRandomString(0), 22)
}
