package handlers

import (
	"context"
	"net/http"
	"time"

	"party-on-delivery/internal/checkout"
	"party-on-delivery/internal/session"
	"party-on-delivery/pkg/response"
)

func (h *Handler) loadCheckoutState(ctx context.Context, sessionID int64) (checkout.State, error) {
	var state checkout.State
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyCheckoutState, &state); err != nil {
		return checkout.State{}, err
	}
	return state, nil
}

// bundleStatus reports whether the current session qualifies for bundled
// delivery: the customer opted into adding onto their previous order, that
// order is still inside its reuse window, and the delivery details match.
func (h *Handler) bundleStatus(ctx context.Context, sessionID int64) (bool, *checkout.LastOrderInfo, checkout.Changes, error) {
	var addToOrder bool
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyAddToOrder, &addToOrder); err != nil {
		return false, nil, checkout.Changes{}, err
	}

	var last checkout.LastOrderInfo
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyLastOrder, &last)
	if err != nil {
		return false, nil, checkout.Changes{}, err
	}
	if !found || !last.Usable(time.Now()) {
		return false, nil, checkout.Changes{}, nil
	}

	var delivery checkout.DeliveryInfo
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyDeliveryInfo, &delivery); err != nil {
		return false, nil, checkout.Changes{}, err
	}

	changes := checkout.Diff(delivery, last)
	matched := addToOrder && !changes.HasChanges
	return matched, &last, changes, nil
}

// GetCheckoutState returns everything the checkout flow renders from: the
// per-step confirmation state, the active step, stored inputs, and the
// previous-order bundling status.
func (h *Handler) GetCheckoutState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}

	var delivery checkout.DeliveryInfo
	var address checkout.AddressInfo
	var customer checkout.CustomerInfo
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyDeliveryInfo, &delivery); err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyAddress, &address)
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyCustomer, &customer)

	bundled, lastOrder, changes, err := h.bundleStatus(ctx, sessionID)
	if err != nil {
		h.Logger.Error("bundle status failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}

	payload := map[string]any{
		"state":           state,
		"activeStep":      state.Active(),
		"readyForPayment": state.ReadyForPayment(),
		"delivery":        delivery,
		"address":         address,
		"customer":        customer,
		"bundled":         bundled,
	}
	if lastOrder != nil {
		payload["lastOrder"] = lastOrder
		payload["changesFromLastOrder"] = changes
	}
	response.Success(w, payload)
}

func (h *Handler) ConfirmDateTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req checkout.DeliveryInfo
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := checkout.ValidateDelivery(req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyDeliveryInfo, req); err != nil {
		h.Logger.Error("delivery info save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save delivery info")
		return
	}

	state = state.Confirm(checkout.StepDateTime)
	if err := h.Sessions.Put(ctx, sessionID, session.KeyCheckoutState, state); err != nil {
		h.Logger.Error("checkout state save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save checkout state")
		return
	}

	response.Success(w, map[string]any{"state": state, "activeStep": state.Active()})
}

func (h *Handler) ConfirmAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req checkout.AddressInfo
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := checkout.ValidateAddress(req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}
	if !state.Confirmed(checkout.StepDateTime) {
		response.Error(w, http.StatusConflict, "STEP_ORDER", "Confirm delivery date and time first")
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyAddress, req); err != nil {
		h.Logger.Error("address save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save address")
		return
	}

	// Keep the flat delivery address in sync for bundle comparison.
	var delivery checkout.DeliveryInfo
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyDeliveryInfo, &delivery)
	delivery.Address = checkout.FormatAddress(req)
	if req.Instructions != "" {
		delivery.Instructions = req.Instructions
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyDeliveryInfo, delivery); err != nil {
		h.Logger.Error("delivery info save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save delivery info")
		return
	}

	state = state.Confirm(checkout.StepAddress)
	if err := h.Sessions.Put(ctx, sessionID, session.KeyCheckoutState, state); err != nil {
		h.Logger.Error("checkout state save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save checkout state")
		return
	}

	response.Success(w, map[string]any{"state": state, "activeStep": state.Active()})
}

func (h *Handler) ConfirmCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req checkout.CustomerInfo
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := checkout.ValidateCustomer(req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}
	if !state.Confirmed(checkout.StepAddress) {
		response.Error(w, http.StatusConflict, "STEP_ORDER", "Confirm delivery address first")
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyCustomer, req); err != nil {
		h.Logger.Error("customer save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save customer info")
		return
	}

	state = state.Confirm(checkout.StepCustomer)
	if err := h.Sessions.Put(ctx, sessionID, session.KeyCheckoutState, state); err != nil {
		h.Logger.Error("checkout state save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save checkout state")
		return
	}

	response.Success(w, map[string]any{
		"state":           state,
		"activeStep":      state.Active(),
		"readyForPayment": state.ReadyForPayment(),
	})
}

// EditStep reopens a confirmed step without touching the data or the other
// steps' confirmations.
func (h *Handler) EditStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	step, err := checkout.ParseStep(readPathString(r, "step"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown checkout step")
		return
	}
	if step == checkout.StepPayment {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Payment step cannot be edited")
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}

	state = state.Edit(step)
	if err := h.Sessions.Put(ctx, sessionID, session.KeyCheckoutState, state); err != nil {
		h.Logger.Error("checkout state save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save checkout state")
		return
	}

	response.Success(w, map[string]any{"state": state, "activeStep": state.Active()})
}

type addToOrderRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAddToOrder toggles the "add to my previous order" mode. Turning it on
// only has an effect while the last order is inside its reuse window.
func (h *Handler) SetAddToOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req addToOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if !req.Enabled {
		if err := h.Sessions.Delete(ctx, sessionID, session.KeyAddToOrder); err != nil {
			h.Logger.Error("add-to-order clear failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order mode")
			return
		}
		response.Success(w, map[string]any{"enabled": false})
		return
	}

	var last checkout.LastOrderInfo
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyLastOrder, &last)
	if err != nil {
		h.Logger.Error("last order load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order mode")
		return
	}
	if !found || !last.Usable(time.Now()) {
		response.Error(w, http.StatusConflict, "LAST_ORDER_UNAVAILABLE", "No recent order is available to add to")
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyAddToOrder, true); err != nil {
		h.Logger.Error("add-to-order save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order mode")
		return
	}
	response.Success(w, map[string]any{"enabled": true, "lastOrder": last})
}
