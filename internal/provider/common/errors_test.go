package common

import (
	"errors"
	"testing"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "GitHub API error with Message field",
			err:      errors.New("GET https://api.github.com/search/issues: 422 Validation Failed [{Resource:Search Field:q Code:invalid Message:The listed users and repositories cannot be searched}]"),
			expected: "The listed users and repositories cannot be searched",
		},
		{
			name:     "Message without trailing bracket",
			err:      errors.New("GET https://api.github.com/user: 401 Message:Bad credentials"),
			expected: "Bad credentials",
		},
		{
			name:     "Simple error message",
			err:      errors.New("connection timeout"),
			expected: "connection timeout",
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "Error with colon in text",
			err:      errors.New("fetch manifest: some error occurred"),
			expected: "fetch manifest: some error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractErrorMessage(tt.err)
			if result != tt.expected {
				t.Errorf("ExtractErrorMessage() = %q, want %q", result, tt.expected)
			}
		})
	}
}
