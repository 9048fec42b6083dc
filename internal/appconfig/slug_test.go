package appconfig

import (
	"context"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"Austin Party Co.", "austin-party-co"},
		{"  SXSW -- 2026!  ", "sxsw-2026"},
		{"***", "app"},
		{"already-clean", "already-clean"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.name); got != tc.expected {
			t.Fatalf("Slugify(%q) = %q, expected %q", tc.name, got, tc.expected)
		}
	}
}

func TestUniqueSlugAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"austin-party": true, "austin-party-2": true}
	exists := func(_ context.Context, slug string) (bool, error) {
		return taken[slug], nil
	}

	slug, err := UniqueSlug(context.Background(), "Austin Party", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slug != "austin-party-3" {
		t.Fatalf("expected austin-party-3, got %q", slug)
	}
}

func TestUniqueSlugGivesUpAfterBoundedAttempts(t *testing.T) {
	attempts := 0
	exists := func(_ context.Context, _ string) (bool, error) {
		attempts++
		return true, nil
	}

	_, err := UniqueSlug(context.Background(), "popular", exists)
	if err != ErrSlugExhausted {
		t.Fatalf("expected ErrSlugExhausted, got %v", err)
	}
	if attempts != 100 {
		t.Fatalf("expected exactly 100 attempts, got %d", attempts)
	}
}
