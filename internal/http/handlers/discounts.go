package handlers

import (
	"net/http"
	"strings"

	"party-on-delivery/internal/discount"
	"party-on-delivery/internal/session"
	"party-on-delivery/pkg/response"
)

type applyDiscountRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req applyDiscountRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "code is required")
		return
	}

	applied, derr := discount.Lookup(req.Code)
	if derr != nil {
		response.ErrorDetails(w, derr.StatusCode, string(derr.Code), derr.Message, derr.Details)
		return
	}

	// While the previous-order match holds, the synthetic free-shipping
	// discount is in force and entered codes are rejected, not stacked.
	bundled, _, _, berr := h.bundleStatus(ctx, sessionID)
	if berr != nil {
		h.Logger.Error("bundle status failed", zapError(berr))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply discount")
		return
	}
	if bundled {
		response.Error(w, http.StatusConflict, string(discount.ErrDiscountLockedByBundle), "Bundled delivery savings are applied automatically; remove the previous-order match to use a code")
		return
	}

	var current discount.Applied
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyAppliedDiscount, &current)
	if err != nil {
		h.Logger.Error("discount load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply discount")
		return
	}
	if found && current.Code == applied.Code {
		response.Error(w, http.StatusConflict, string(discount.ErrDiscountAlreadyApplied), "This discount code is already applied")
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyAppliedDiscount, applied); err != nil {
		h.Logger.Error("discount save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply discount")
		return
	}
	response.Success(w, map[string]any{"discount": applied})
}

func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var current discount.Applied
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyAppliedDiscount, &current)
	if err != nil {
		h.Logger.Error("discount load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove discount")
		return
	}

	if !found {
		bundled, _, _, berr := h.bundleStatus(ctx, sessionID)
		if berr == nil && bundled {
			response.Error(w, http.StatusConflict, string(discount.ErrDiscountLockedByBundle), "Bundled delivery savings are applied automatically and cannot be removed")
			return
		}
		response.Error(w, http.StatusNotFound, string(discount.ErrDiscountNotFound), "No discount is applied")
		return
	}

	if err := h.Sessions.Delete(ctx, sessionID, session.KeyAppliedDiscount); err != nil {
		h.Logger.Error("discount delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove discount")
		return
	}
	response.Success(w, map[string]any{"removed": current.Code})
}
