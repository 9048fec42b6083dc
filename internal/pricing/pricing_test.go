package pricing

import (
	"math"
	"testing"

	"party-on-delivery/internal/discount"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFlatFeeOrder(t *testing.T) {
	b := Compute(Params{
		Subtotal: 50,
		BaseFee:  FeeQuote{Amount: 9.99},
	})

	if !almostEqual(b.SalesTax, 4.125) {
		t.Fatalf("expected tax 4.125, got %v", b.SalesTax)
	}
	if !almostEqual(b.DeliveryFee, 9.99) {
		t.Fatalf("expected fee 9.99, got %v", b.DeliveryFee)
	}
	if !almostEqual(b.Total, 50+9.99+4.125) {
		t.Fatalf("expected total %v, got %v", 50+9.99+4.125, b.Total)
	}
}

func TestLargeOrderFeeOverridesFlatFee(t *testing.T) {
	b := Compute(Params{
		Subtotal: 250,
		BaseFee:  FeeQuote{Amount: 9.99},
	})

	if !almostEqual(b.DeliveryFee, 25.00) {
		t.Fatalf("expected 10%% fee 25.00, got %v", b.DeliveryFee)
	}
}

func TestBundleMatchForcesFreeDelivery(t *testing.T) {
	b := Compute(Params{
		Subtotal:    250,
		BundleMatch: true,
		BaseFee:     FeeQuote{Amount: 9.99},
	})

	if b.DeliveryFee != 0 {
		t.Fatalf("bundling must win over the large-order fee, got %v", b.DeliveryFee)
	}
	if !b.FreeShipping {
		t.Fatalf("expected free shipping flag")
	}
}

func TestBundleMatchOverridesEnteredCode(t *testing.T) {
	code, lookupErr := discount.Lookup("PARTYON10")
	if lookupErr != nil {
		t.Fatalf("unexpected lookup error: %v", lookupErr)
	}

	b := Compute(Params{
		Subtotal:    100,
		Discount:    code,
		BundleMatch: true,
		BaseFee:     FeeQuote{Amount: 9.99},
	})

	// The synthetic previous-order discount replaces the code: free delivery
	// only, never a percentage cut on top.
	if !almostEqual(b.DiscountAmount, 0) {
		t.Fatalf("bundled orders must not keep the percentage discount, got %v", b.DiscountAmount)
	}
	if b.DeliveryFee != 0 || !b.FreeShipping {
		t.Fatalf("expected free delivery while bundled, got %+v", b)
	}
	if !almostEqual(b.Total, 100+8.25) {
		t.Fatalf("expected total 108.25, got %v", b.Total)
	}
}

func TestFreeShippingCodeZeroesFee(t *testing.T) {
	code, lookupErr := discount.Lookup("FREESHIP")
	if lookupErr != nil {
		t.Fatalf("unexpected lookup error: %v", lookupErr)
	}

	b := Compute(Params{
		Subtotal: 80,
		Discount: code,
		BaseFee:  FeeQuote{Amount: 12.50},
	})

	if b.DeliveryFee != 0 {
		t.Fatalf("expected zero fee, got %v", b.DeliveryFee)
	}
	if !almostEqual(b.DiscountedSubtotal, 80) {
		t.Fatalf("free shipping must not touch the subtotal")
	}
}

func TestPercentageDiscountLeavesTaxBase(t *testing.T) {
	code, lookupErr := discount.Lookup("PARTYON10")
	if lookupErr != nil {
		t.Fatalf("unexpected lookup error: %v", lookupErr)
	}

	b := Compute(Params{
		Subtotal: 100,
		Discount: code,
		BaseFee:  FeeQuote{Amount: 9.99},
	})

	if !almostEqual(b.DiscountAmount, 10) {
		t.Fatalf("expected discount 10, got %v", b.DiscountAmount)
	}
	if !almostEqual(b.DiscountedSubtotal, 90) {
		t.Fatalf("expected discounted subtotal 90, got %v", b.DiscountedSubtotal)
	}
	// Tax stays on the pre-discount subtotal.
	if !almostEqual(b.SalesTax, 8.25) {
		t.Fatalf("expected tax 8.25, got %v", b.SalesTax)
	}
	if !almostEqual(b.DeliveryFee, 9.99) {
		t.Fatalf("percentage discount must not touch the fee, got %v", b.DeliveryFee)
	}
	if !almostEqual(b.Total, 90+9.99+8.25) {
		t.Fatalf("expected total %v, got %v", 90+9.99+8.25, b.Total)
	}
}

func TestTotalNeverBelowDiscountedSubtotalPlusTax(t *testing.T) {
	cases := []Params{
		{Subtotal: 50, BaseFee: FeeQuote{Amount: 9.99}},
		{Subtotal: 250, BaseFee: FeeQuote{Amount: 9.99}},
		{Subtotal: 80, BundleMatch: true},
		{Subtotal: 120, Tip: 15, BaseFee: FeeQuote{Amount: 5}},
		{Subtotal: 60, Tip: -3, BaseFee: FeeQuote{Amount: -1}},
	}

	for _, p := range cases {
		b := Compute(p)
		if b.Total < b.DiscountedSubtotal+b.SalesTax-1e-9 {
			t.Fatalf("total %v fell below discounted subtotal + tax (%v)", b.Total, b.DiscountedSubtotal+b.SalesTax)
		}
		if b.DeliveryFee < 0 || b.Tip < 0 {
			t.Fatalf("fee and tip must be non-negative: %+v", b)
		}
	}
}

func TestDistanceFee(t *testing.T) {
	cfg := FeeConfig{
		Base:          3,
		PerKm:         1.5,
		Min:           5,
		Max:           20,
		MaxDistanceKm: 30,
		StoreLat:      30.2672,
		StoreLng:      -97.7431,
	}

	// Same point: distance 0, clamped up to the minimum.
	lat, lng := 30.2672, -97.7431
	quote, err := cfg.Quote(&lat, &lng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Amount != 5 {
		t.Fatalf("expected min fee 5, got %v", quote.Amount)
	}

	// Roughly 1 degree of latitude is ~111km: out of range.
	farLat := 31.2672
	if _, err := cfg.Quote(&farLat, &lng); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestFlatFeeWhenNoCoordinates(t *testing.T) {
	cfg := FeeConfig{Base: 9.99, PerKm: 1.5}
	quote, err := cfg.Quote(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Amount != 9.99 || quote.DistanceKm != nil {
		t.Fatalf("expected flat quote, got %+v", quote)
	}
}
