package utils

import (
	"strings"
	"testing"
)

func TestShareTokenRoundTrip(t *testing.T) {
	token := CreateOrderShareToken("secret", "POD-20260831-0042")
	got, ok := ParseOrderShareToken("secret", token)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if got != "POD-20260831-0042" {
		t.Fatalf("order number = %q", got)
	}
}

func TestShareTokenWrongSecret(t *testing.T) {
	token := CreateOrderShareToken("secret", "POD-1")
	if _, ok := ParseOrderShareToken("other", token); ok {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestShareTokenTampered(t *testing.T) {
	token := CreateOrderShareToken("secret", "POD-1")
	parts := strings.Split(token, ".")
	forged := base64UrlEncode([]byte("POD-2")) + "." + parts[1]
	if _, ok := ParseOrderShareToken("secret", forged); ok {
		t.Fatal("expected verification failure for tampered payload")
	}
}

func TestShareTokenMalformed(t *testing.T) {
	for _, bad := range []string{"", "abc", "a.b.c", "!!!.???"} {
		if _, ok := ParseOrderShareToken("secret", bad); ok {
			t.Fatalf("expected failure for %q", bad)
		}
	}
}
