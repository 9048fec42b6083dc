// Package pricing derives the order totals: delivery fee (flat, distance
// based, or the large-order percentage), sales tax, discount application and
// the final charge amount. Values stay unrounded floats; rounding to cents
// happens at the payment boundary.
package pricing

import "party-on-delivery/internal/discount"

// SalesTaxRate is the fixed Texas combined rate applied to every order.
const SalesTaxRate = 0.0825

// Orders at or above this subtotal switch from the quoted fee to a
// percentage-of-subtotal delivery fee.
const (
	LargeOrderThreshold = 200.0
	LargeOrderFeeRate   = 0.10
)

type Params struct {
	Subtotal    float64
	Tip         float64
	Discount    discount.Applied
	BundleMatch bool
	BaseFee     FeeQuote
}

type Breakdown struct {
	Subtotal           float64  `json:"subtotal"`
	DiscountAmount     float64  `json:"discountAmount"`
	DiscountedSubtotal float64  `json:"discountedSubtotal"`
	DeliveryFee        float64  `json:"deliveryFee"`
	DistanceKm         *float64 `json:"distanceKm,omitempty"`
	SalesTax           float64  `json:"salesTax"`
	Tip                float64  `json:"tip"`
	Total              float64  `json:"total"`
	FreeShipping       bool     `json:"freeShipping"`
}

// Compute applies the pricing rules in order: tax on the undiscounted
// subtotal, the large-order fee override, then free shipping winning over
// everything else. Percentage discounts reduce only the subtotal that enters
// the final sum, never the tax base. While a previous-order match holds, the
// synthetic bundle discount replaces any entered code outright; the two
// never stack.
func Compute(p Params) Breakdown {
	subtotal := p.Subtotal
	if subtotal < 0 {
		subtotal = 0
	}
	tip := p.Tip
	if tip < 0 {
		tip = 0
	}

	applied := p.Discount
	if p.BundleMatch {
		applied = discount.Bundle()
	}

	salesTax := subtotal * SalesTaxRate

	discountAmount := 0.0
	if !applied.IsZero() && applied.Type == discount.TypePercentage {
		pct := applied.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discountAmount = subtotal * (pct / 100)
	}
	discountedSubtotal := subtotal - discountAmount

	fee := p.BaseFee.Amount
	if subtotal >= LargeOrderThreshold {
		fee = round2(subtotal * LargeOrderFeeRate)
	}

	freeShipping := p.BundleMatch || (!applied.IsZero() && applied.FreeShipping())
	if freeShipping {
		fee = 0
	}
	if fee < 0 {
		fee = 0
	}

	return Breakdown{
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		DiscountedSubtotal: discountedSubtotal,
		DeliveryFee:        fee,
		DistanceKm:         p.BaseFee.DistanceKm,
		SalesTax:           salesTax,
		Tip:                tip,
		Total:              discountedSubtotal + fee + salesTax + tip,
		FreeShipping:       freeShipping,
	}
}
