package handlers

import "testing"

func TestBuildAddress(t *testing.T) {
	raw := map[string]any{
		"house_number": "100",
		"road":         "Congress Ave",
		"city":         "Austin",
		"state":        "Texas",
		"postcode":     "78701",
	}

	addr := buildAddress(raw)
	if addr.Street != "100 Congress Ave" {
		t.Fatalf("expected street with house number, got %q", addr.Street)
	}
	if addr.City != "Austin" || addr.State != "Texas" || addr.ZipCode != "78701" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestBuildAddressFallbacks(t *testing.T) {
	raw := map[string]any{
		"pedestrian": "Rainey Street",
		"town":       "Bee Cave",
		"region":     "Texas",
	}

	addr := buildAddress(raw)
	if addr.Street != "Rainey Street" {
		t.Fatalf("expected pedestrian fallback, got %q", addr.Street)
	}
	if addr.City != "Bee Cave" {
		t.Fatalf("expected town fallback, got %q", addr.City)
	}
	if addr.ZipCode != "" {
		t.Fatalf("expected empty zip, got %q", addr.ZipCode)
	}

	empty := buildAddress(nil)
	if empty.Street != "" || empty.City != "" {
		t.Fatalf("expected zero address for nil input: %+v", empty)
	}
}

func TestPickFirstString(t *testing.T) {
	m := map[string]any{
		"a": "",
		"b": "  ",
		"c": 42,
		"d": " value ",
	}
	if got := pickFirstString(m, "a", "b", "c", "d"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := pickFirstString(m, "missing"); got != "" {
		t.Fatalf("expected empty for missing keys, got %q", got)
	}
}

func TestParseFloat(t *testing.T) {
	cases := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{name: "float", input: 30.25, expected: 30.25, ok: true},
		{name: "numeric string", input: "-97.74", expected: -97.74, ok: true},
		{name: "padded string", input: " 30.1 ", expected: 30.1, ok: true},
		{name: "garbage string", input: "north", ok: false},
		{name: "nil", input: nil, ok: false},
		{name: "int is rejected", input: 5, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseFloat(tc.input)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRoundCoord(t *testing.T) {
	if got := roundCoord(30.123456789); got != "30.12346" {
		t.Fatalf("expected 5 decimal places, got %s", got)
	}
	if got := roundCoord(-97.7); got != "-97.70000" {
		t.Fatalf("expected fixed width, got %s", got)
	}
}

func TestGeocodeRateLimit(t *testing.T) {
	ip := "198.51.100.7"

	for i := 0; i < geocodeRateLimitMax; i++ {
		if limited, _ := geocodeIsRateLimited(ip); limited {
			t.Fatalf("limited too early at request %d", i+1)
		}
	}
	limited, retryAfter := geocodeIsRateLimited(ip)
	if !limited {
		t.Fatalf("expected limit after %d requests", geocodeRateLimitMax)
	}
	if retryAfter == "" {
		t.Fatalf("expected Retry-After value when limited")
	}
}
