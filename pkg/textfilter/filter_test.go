package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Apply(t *testing.T) {
	f := New()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "lowercase word",
			in:       "The elder mutters a damn curse.",
			expected: "The elder mutters a dang curse.",
		},
		{
			name:     "title case preserved",
			in:       "Damn you, Elder Shen!",
			expected: "Dang you, Elder Shen!",
		},
		{
			name:     "all caps preserved",
			in:       "DAMN THE HEAVENS",
			expected: "DANG THE HEAVENS",
		},
		{
			name:     "word inside another word untouched",
			in:       "The assembly hall and the classic hellion scroll.",
			expected: "The assembly hall and the classic hellion scroll.",
		},
		{
			name:     "multiple words in one line",
			in:       "Hell, that bastard took the manual.",
			expected: "Heck, that wretch took the manual.",
		},
		{
			name:     "markup spans kept intact",
			in:       `<span class="text-red-500">"Damn you!"</span>`,
			expected: `<span class="text-red-500">"Dang you!"</span>`,
		},
		{
			name:     "clean text unchanged",
			in:       "Qi gathers at your fingertips.",
			expected: "Qi gathers at your fingertips.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Apply(tt.in))
		})
	}
}
