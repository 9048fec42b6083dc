package handlers

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "order number passes through", input: "POD-20260831-123456", expected: "POD-20260831-123456"},
		{name: "spaces and slashes replaced", input: "order /../etc/passwd", expected: "order_.._etc_passwd"},
		{name: "unicode collapsed", input: "receiptéé.pdf", expected: "receipt_.pdf"},
		{name: "empty falls back", input: "", expected: "receipt"},
		{name: "whitespace only falls back", input: "   ", expected: "receipt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
