package payments

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledWithoutSecretKey(t *testing.T) {
	c := New("")
	if c.Enabled() {
		t.Fatalf("client without a secret key must report disabled")
	}
	if _, err := c.CreateIntent(context.Background(), IntentRequest{AmountCents: 100}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if _, err := c.GetIntent(context.Background(), "pi_123"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	if New("  ").Enabled() {
		t.Fatalf("whitespace key must not enable the client")
	}
	if !New("sk_test_123").Enabled() {
		t.Fatalf("client with a key must be enabled")
	}
}

func TestToCents(t *testing.T) {
	cases := []struct {
		amount float64
		cents  int64
	}{
		{0, 0},
		{9.99, 999},
		{64.115, 6412}, // rounds up at the payment boundary
		{250.0, 25000},
		{0.004, 0},
	}
	for _, tc := range cases {
		if got := ToCents(tc.amount); got != tc.cents {
			t.Fatalf("ToCents(%v) = %d, expected %d", tc.amount, got, tc.cents)
		}
	}
}

func TestAmountsMatch(t *testing.T) {
	if !AmountsMatch(64.115, 64.115) {
		t.Fatalf("identical amounts must match")
	}
	if !AmountsMatch(64.1149, 64.115) {
		t.Fatalf("sub-half-cent drift must match")
	}
	if AmountsMatch(64.12, 64.115) {
		t.Fatalf("never send a charge when the totals disagree by over half a cent")
	}
	if AmountsMatch(0, 9.99) {
		t.Fatalf("zero displayed total must not match a real one")
	}
}
