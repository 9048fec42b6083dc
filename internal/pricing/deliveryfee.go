package pricing

import (
	"errors"
	"math"
)

// ErrOutOfRange is returned when the delivery address is farther from the
// store than the configured maximum.
var ErrOutOfRange = errors.New("delivery address out of range")

// FeeConfig is the store's delivery fee schedule. PerKm == 0 means the store
// charges a flat base fee regardless of distance.
type FeeConfig struct {
	Base          float64
	PerKm         float64
	Min           float64
	Max           float64
	MaxDistanceKm float64
	StoreLat      float64
	StoreLng      float64
}

// FeeQuote is the resolved base delivery fee before order-level rules
// (large-order surcharge, free shipping) apply.
type FeeQuote struct {
	Amount     float64  `json:"amount"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Quote resolves the base fee for an address. Without coordinates or a
// per-km rate the flat base fee applies.
func (c FeeConfig) Quote(lat, lng *float64) (FeeQuote, error) {
	if lat == nil || lng == nil || c.PerKm <= 0 {
		return FeeQuote{Amount: round2(c.Base)}, nil
	}

	distanceKm := round3(haversineDistanceKm(c.StoreLat, c.StoreLng, *lat, *lng))
	if c.MaxDistanceKm > 0 && distanceKm > c.MaxDistanceKm {
		return FeeQuote{}, ErrOutOfRange
	}

	fee := c.Base + c.PerKm*distanceKm
	if c.Min > 0 && fee < c.Min {
		fee = c.Min
	}
	if c.Max > 0 && fee > c.Max {
		fee = c.Max
	}

	return FeeQuote{Amount: round2(fee), DistanceKm: &distanceKm}, nil
}

func haversineDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371.0
	toRad := func(deg float64) float64 {
		return deg * math.Pi / 180
	}

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	lat1Rad := toRad(lat1)
	lat2Rad := toRad(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
