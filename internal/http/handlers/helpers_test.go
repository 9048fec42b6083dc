package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{
			name:       "forwarded takes first hop",
			forwarded:  "203.0.113.9, 10.0.0.1",
			remoteAddr: "10.0.0.1:4321",
			expected:   "203.0.113.9",
		},
		{
			name:       "real ip when no forwarded",
			realIP:     "203.0.113.10",
			remoteAddr: "10.0.0.1:4321",
			expected:   "203.0.113.10",
		},
		{
			name:       "remote addr host fallback",
			remoteAddr: "192.0.2.4:5555",
			expected:   "192.0.2.4",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.4",
			expected:   "192.0.2.4",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-Ip", tc.realIP)
			}
			if got := clientIP(r); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}
