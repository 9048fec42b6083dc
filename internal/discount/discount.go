// Package discount resolves storefront discount codes. The catalog is two
// static codes; everything else is rejected. A synthetic free-shipping
// discount is applied automatically while the current delivery selection
// matches the customer's previous order, and it outranks any entered code.
package discount

import "strings"

type Type string

const (
	TypePercentage   Type = "percentage"
	TypeFreeShipping Type = "free_shipping"
)

type Source string

const (
	SourceCode   Source = "CODE"
	SourceBundle Source = "BUNDLE"
)

// BundleCode marks the synthetic discount created by a previous-order match.
const BundleCode = "PREVIOUS_ORDER"

type Applied struct {
	Code   string  `json:"code"`
	Type   Type    `json:"type"`
	Value  float64 `json:"value"`
	Source Source  `json:"source"`
}

var catalog = map[string]Applied{
	"PARTYON10": {Code: "PARTYON10", Type: TypePercentage, Value: 10, Source: SourceCode},
	"FREESHIP":  {Code: "FREESHIP", Type: TypeFreeShipping, Value: 0, Source: SourceCode},
}

// Lookup validates a user-entered code against the static catalog.
func Lookup(code string) (Applied, *Error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		return Applied{}, ValidationError(ErrDiscountNotFound, "Discount code is required", nil)
	}
	applied, ok := catalog[key]
	if !ok {
		return Applied{}, ValidationError(ErrDiscountNotFound, "Invalid discount code", nil)
	}
	return applied, nil
}

// Bundle is the synthetic free-shipping discount for an exact previous-order
// match. It is never persisted past the moment the match breaks.
func Bundle() Applied {
	return Applied{Code: BundleCode, Type: TypeFreeShipping, Value: 0, Source: SourceBundle}
}

func (a Applied) IsZero() bool {
	return a.Code == ""
}

func (a Applied) FreeShipping() bool {
	return a.Type == TypeFreeShipping
}
