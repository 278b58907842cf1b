package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "json code block with surrounding whitespace",
			input:    "  \n```json\n  {\"key\": \"value\"}  \n```\n ",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "only opening marker",
			input:    "```json\n{\"a\":1}",
			expected: `{"a":1}`,
		},
		{
			name:     "only closing marker",
			input:    "{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "untagged fence keeps opening marker",
			input:    "```\n{\"a\":1}\n```",
			expected: "```\n{\"a\":1}",
		},
		{
			name:     "preamble is not removed",
			input:    "Here you go: {\"a\":1}",
			expected: "Here you go: {\"a\":1}",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "fence only",
			input:    "```json```",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}
