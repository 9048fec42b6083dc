package handlers

import (
	"context"
	"errors"
	"net/http"

	"party-on-delivery/internal/cart"
	"party-on-delivery/internal/checkout"
	"party-on-delivery/internal/discount"
	"party-on-delivery/internal/pricing"
	"party-on-delivery/internal/session"
	"party-on-delivery/pkg/response"
)

var errEmptyCart = errors.New("cart is empty")

func (h *Handler) feeConfig() pricing.FeeConfig {
	return pricing.FeeConfig{
		Base:          h.Config.DeliveryFeeBase,
		PerKm:         h.Config.DeliveryFeePerKm,
		Min:           h.Config.DeliveryFeeMin,
		Max:           h.Config.DeliveryFeeMax,
		MaxDistanceKm: h.Config.DeliveryMaxDistanceKm,
		StoreLat:      h.Config.StoreLatitude,
		StoreLng:      h.Config.StoreLongitude,
	}
}

// computeBreakdown assembles the full pricing picture for a session: cart
// subtotal, the base delivery fee for the stored address, any applied code
// and the bundle match. All order mutations price through here so the quote,
// the payment intent, and the recorded order can never disagree.
func (h *Handler) computeBreakdown(ctx context.Context, sessionID int64, tip float64) (pricing.Breakdown, cart.Cart, discount.Applied, error) {
	c, err := h.loadCart(ctx, sessionID)
	if err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}
	if c.IsEmpty() {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, errEmptyCart
	}

	var applied discount.Applied
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyAppliedDiscount, &applied); err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}

	bundled, _, _, err := h.bundleStatus(ctx, sessionID)
	if err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}

	// A joined group order earns the same free delivery as a previous-order
	// bundle: the joiner's items ride along with the host's delivery.
	var join groupJoin
	joined, err := h.Sessions.Get(ctx, sessionID, session.KeyGroupJoin, &join)
	if err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}
	bundled = bundled || joined

	// The synthetic bundle discount replaces any entered code while the
	// match holds, so the recorded order carries PREVIOUS_ORDER, not both.
	if bundled {
		applied = discount.Bundle()
	}

	var address checkout.AddressInfo
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyAddress, &address); err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}

	baseFee, err := h.feeConfig().Quote(address.Latitude, address.Longitude)
	if err != nil {
		return pricing.Breakdown{}, cart.Cart{}, discount.Applied{}, err
	}

	breakdown := pricing.Compute(pricing.Params{
		Subtotal:    c.TotalPrice(),
		Tip:         tip,
		Discount:    applied,
		BundleMatch: bundled,
		BaseFee:     baseFee,
	})
	return breakdown, c, applied, nil
}

func (h *Handler) writePricingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errEmptyCart):
		response.Error(w, http.StatusConflict, "CART_EMPTY", "The cart is empty")
	case errors.Is(err, pricing.ErrOutOfRange):
		response.Error(w, http.StatusUnprocessableEntity, "OUT_OF_DELIVERY_RANGE", "The delivery address is outside our delivery area")
	default:
		h.Logger.Error("pricing failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to price the order")
	}
}

type quoteRequest struct {
	Tip float64 `json:"tip"`
}

// PricingQuote returns the current order breakdown without any side effects.
func (h *Handler) PricingQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Tip < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "tip must not be negative")
		return
	}

	breakdown, _, _, err := h.computeBreakdown(ctx, sessionID, req.Tip)
	if err != nil {
		h.writePricingError(w, err)
		return
	}
	response.Success(w, breakdown)
}

// PublicDeliveryQuote prices the base delivery fee for arbitrary coordinates,
// used by the address step before anything is confirmed.
func (h *Handler) PublicDeliveryQuote(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseFloatQuery(r, "lat")
	lng, okLng := parseFloatQuery(r, "lng")

	var latPtr, lngPtr *float64
	if okLat && okLng {
		latPtr, lngPtr = &lat, &lng
	}

	quote, err := h.feeConfig().Quote(latPtr, lngPtr)
	if err != nil {
		h.writePricingError(w, err)
		return
	}
	response.Success(w, quote)
}
