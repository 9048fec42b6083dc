package discount

import "testing"

func TestLookupKnownCodes(t *testing.T) {
	cases := []struct {
		code  string
		typ   Type
		value float64
	}{
		{"PARTYON10", TypePercentage, 10},
		{"partyon10", TypePercentage, 10},
		{" FREESHIP ", TypeFreeShipping, 0},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			applied, err := Lookup(tc.code)
			if err != nil {
				t.Fatalf("expected code to resolve, got %v", err)
			}
			if applied.Type != tc.typ || applied.Value != tc.value {
				t.Fatalf("expected %s/%v, got %s/%v", tc.typ, tc.value, applied.Type, applied.Value)
			}
			if applied.Source != SourceCode {
				t.Fatalf("expected CODE source, got %s", applied.Source)
			}
		})
	}
}

func TestLookupRejectsUnknownCodes(t *testing.T) {
	for _, code := range []string{"PARTYON20", "FREESHIPPING", "BOGUS", ""} {
		applied, err := Lookup(code)
		if err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
		if err.Code != ErrDiscountNotFound {
			t.Fatalf("expected DISCOUNT_NOT_FOUND, got %s", err.Code)
		}
		if !applied.IsZero() {
			t.Fatalf("expected zero discount on rejection")
		}
	}
}

func TestBundleDiscount(t *testing.T) {
	b := Bundle()
	if !b.FreeShipping() {
		t.Fatalf("bundle discount must be free shipping")
	}
	if b.Source != SourceBundle {
		t.Fatalf("expected BUNDLE source, got %s", b.Source)
	}
	if b.Code != BundleCode {
		t.Fatalf("expected code %s, got %s", BundleCode, b.Code)
	}
}
