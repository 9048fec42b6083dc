package handlers

import (
	"context"
	"net/http"
	"strings"

	"party-on-delivery/internal/cart"
	"party-on-delivery/internal/session"
	"party-on-delivery/pkg/response"
)

func (h *Handler) loadCart(ctx context.Context, sessionID int64) (cart.Cart, error) {
	var c cart.Cart
	if _, err := h.Sessions.Get(ctx, sessionID, session.KeyCart, &c); err != nil {
		return cart.Cart{}, err
	}
	return c, nil
}

func (h *Handler) saveCart(ctx context.Context, sessionID int64, c cart.Cart) error {
	if c.IsEmpty() {
		return h.Sessions.Delete(ctx, sessionID, session.KeyCart)
	}
	return h.Sessions.Put(ctx, sessionID, session.KeyCart, c)
}

func cartPayload(c cart.Cart) map[string]any {
	return map[string]any{
		"items":      c.Items,
		"totalItems": c.TotalItems(),
		"totalPrice": c.TotalPrice(),
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	c, err := h.loadCart(r.Context(), sessionID)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	response.Success(w, cartPayload(c))
}

type cartAddRequest struct {
	ProductID string  `json:"id"`
	Variant   string  `json:"variant"`
	Quantity  int     `json:"quantity"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req cartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Price < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "price must not be negative")
		return
	}

	c, err := h.loadCart(ctx, sessionID)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	c.Add(req.ProductID, req.Variant, req.Quantity, cart.Metadata{
		Title: req.Title,
		Price: req.Price,
		Image: req.Image,
	})

	if err := h.saveCart(ctx, sessionID, c); err != nil {
		h.Logger.Error("cart save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save cart")
		return
	}
	response.Success(w, cartPayload(c))
}

type cartQuantityRequest struct {
	ProductID string `json:"id"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) CartSetQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req cartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id is required")
		return
	}

	c, err := h.loadCart(ctx, sessionID)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	c.SetQuantity(req.ProductID, req.Variant, req.Quantity)

	if err := h.saveCart(ctx, sessionID, c); err != nil {
		h.Logger.Error("cart save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save cart")
		return
	}
	response.Success(w, cartPayload(c))
}

func (h *Handler) CartRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	productID := strings.TrimSpace(r.URL.Query().Get("id"))
	variant := strings.TrimSpace(r.URL.Query().Get("variant"))
	if productID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id is required")
		return
	}

	c, err := h.loadCart(ctx, sessionID)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	c.Remove(productID, variant)

	if err := h.saveCart(ctx, sessionID, c); err != nil {
		h.Logger.Error("cart save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save cart")
		return
	}
	response.Success(w, cartPayload(c))
}

func (h *Handler) CartEmpty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.Delete(ctx, sessionID, session.KeyCart); err != nil {
		h.Logger.Error("cart clear failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}
	response.Success(w, cartPayload(cart.Cart{}))
}
