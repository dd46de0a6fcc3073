package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "hyphens stripped",
			input:    "090-1234-5678",
			expected: "09012345678",
		},
		{
			name:     "whitespace stripped",
			input:    " 090 1234 5678 ",
			expected: "09012345678",
		},
		{
			name:     "tabs and mixed whitespace stripped",
			input:    "090\t1234-5678",
			expected: "09012345678",
		},
		{
			name:     "plus prefix kept",
			input:    "+81 90-1234-5678",
			expected: "+819012345678",
		},
		{
			name:     "parentheses kept",
			input:    "(090) 1234-5678",
			expected: "(090)12345678",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"090-1234-5678", "+81 90 1234 5678", "(090)1234-5678", "", "abc"}
	for _, input := range inputs {
		once := NormalizePhone(input)
		assert.Equal(t, once, NormalizePhone(once))
	}
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "jane doe", ApplyChain("  Jane Doe ", "trim", "lowercase"))
	// Unknown normalizer names are a no-op
	assert.Equal(t, "Jane", Apply("Jane", "soundex"))
}
