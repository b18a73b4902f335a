package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"hello world", "hello world"},
		{"  hello   world  ", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\there", "tabs here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWhitespace(tt.in))
	}
}

func TestNormalizeForComparison(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Hello World", "hello world"},
		{"strips punctuation", "Hello, World!", "hello world"},
		{"keeps digits", "Scene 42", "scene 42"},
		{"keeps non-latin scripts", "こんにちは世界", "こんにちは世界"},
		{"empty", "", ""},
		{"single char", "a", ""},
		{"only punctuation", "..!?", ""},
		{"collapses whitespace", "a   b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForComparison(tt.in))
		})
	}
}

func TestIsMeaningful(t *testing.T) {
	assert.True(t, IsMeaningful("hello"))
	assert.True(t, IsMeaningful("42!"))
	assert.False(t, IsMeaningful(""))
	assert.False(t, IsMeaningful("  "))
	assert.False(t, IsMeaningful(".,!?"))
	assert.False(t, IsMeaningful("a"))
}
