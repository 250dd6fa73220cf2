package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type parsePayload struct {
	Intent   string `json:"intent"`
	ActEnded bool   `json:"actEnded"`
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		expected parsePayload
	}{
		{
			name:     "bare JSON object",
			raw:      `{"intent":"meditate","actEnded":true}`,
			wantOK:   true,
			expected: parsePayload{Intent: "meditate", ActEnded: true},
		},
		{
			name:     "fenced block with json tag",
			raw:      "Here is the result:\n```json\n{\"intent\":\"flee\"}\n```\nLet me know if you need anything else!",
			wantOK:   true,
			expected: parsePayload{Intent: "flee"},
		},
		{
			name:     "fenced block without tag",
			raw:      "```\n{\"intent\":\"attack\",\"actEnded\":false}\n```",
			wantOK:   true,
			expected: parsePayload{Intent: "attack"},
		},
		{
			name:     "braces surrounded by prose",
			raw:      "Sure! The player wants to {\"intent\":\"train\"} as requested.",
			wantOK:   true,
			expected: parsePayload{Intent: "train"},
		},
		{
			name:   "multiline preamble and trailer",
			raw:    "I have interpreted the action.\n\n{\n  \"intent\": \"ascend\",\n  \"actEnded\": true\n}\n\nGood luck!",
			wantOK: true,
			expected: parsePayload{
				Intent:   "ascend",
				ActEnded: true,
			},
		},
		{
			name:   "no JSON anywhere",
			raw:    "The hero strides boldly into the cavern.",
			wantOK: false,
		},
		{
			name:   "unbalanced braces",
			raw:    "{\"intent\": \"broken",
			wantOK: false,
		},
		{
			name:   "empty input",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "bare null literal",
			raw:    "null",
			wantOK: false,
		},
		{
			name:   "fenced null literal",
			raw:    "```json\nnull\n```",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSON[parsePayload](tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.expected, got)
			} else {
				assert.Equal(t, parsePayload{}, got, "failed extraction must return the zero value")
			}
		})
	}
}

func TestJSON_PrefersWholeBlob(t *testing.T) {
	// A blob that is itself valid JSON must not be re-scanned for fences.
	raw := "{\"intent\":\"say ```json```\",\"actEnded\":false}"
	got, ok := JSON[parsePayload](raw)
	assert.True(t, ok)
	assert.Equal(t, "say ```json```", got.Intent)
}

func TestJSON_MapTarget(t *testing.T) {
	got, ok := JSON[map[string]any]("noise before ```json\n{\"name\":\"The Trial\",\"outline\":\"Three sentences.\"}\n``` noise after")
	assert.True(t, ok)
	assert.Equal(t, "The Trial", got["name"])
}
