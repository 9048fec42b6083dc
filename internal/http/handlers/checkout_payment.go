package handlers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"party-on-delivery/internal/checkout"
	"party-on-delivery/internal/payments"
	"party-on-delivery/internal/queue"
	"party-on-delivery/internal/session"
	"party-on-delivery/internal/utils"
	"party-on-delivery/pkg/response"

	"github.com/stripe/stripe-go/v78"
)

// paymentPending marks an intent the session is mid-flight on, so a retry
// reuses it instead of creating a second charge.
type paymentPending struct {
	IntentID string  `json:"intentId"`
	Amount   float64 `json:"amount"`
	Tip      float64 `json:"tip"`
}

type paymentIntentRequest struct {
	Tip            float64 `json:"tip"`
	DisplayedTotal float64 `json:"displayedTotal"`
}

// CreatePaymentIntent recomputes the total server side and refuses to charge
// when it disagrees with what the customer was shown.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if !h.Payments.Enabled() {
		response.Error(w, http.StatusServiceUnavailable, "PAYMENTS_DISABLED", "Payments are not configured")
		return
	}

	var req paymentIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Tip < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "tip must not be negative")
		return
	}

	state, err := h.loadCheckoutState(ctx, sessionID)
	if err != nil {
		h.Logger.Error("checkout state load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load checkout state")
		return
	}
	if !state.ReadyForPayment() {
		response.Error(w, http.StatusConflict, "CHECKOUT_INCOMPLETE", "Confirm all checkout steps before paying")
		return
	}

	breakdown, _, _, err := h.computeBreakdown(ctx, sessionID, req.Tip)
	if err != nil {
		h.writePricingError(w, err)
		return
	}

	if !payments.AmountsMatch(req.DisplayedTotal, breakdown.Total) {
		response.ErrorDetails(w, http.StatusConflict, "AMOUNT_MISMATCH", "The order total changed. Please review the updated breakdown.", map[string]any{
			"displayedTotal": req.DisplayedTotal,
			"computedTotal":  breakdown.Total,
			"breakdown":      breakdown,
		})
		return
	}

	// Reuse an in-flight intent for the same amount rather than minting a
	// new one on every retry.
	var pending paymentPending
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyPaymentPending, &pending)
	if err != nil {
		h.Logger.Error("pending payment load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start payment")
		return
	}
	if found && payments.AmountsMatch(pending.Amount, breakdown.Total) {
		intent, gerr := h.Payments.GetIntent(ctx, pending.IntentID)
		if gerr == nil && intent.Status != stripe.PaymentIntentStatusCanceled && intent.Status != stripe.PaymentIntentStatusSucceeded {
			response.Success(w, map[string]any{
				"clientSecret": intent.ClientSecret,
				"intentId":     intent.ID,
				"amount":       breakdown.Total,
				"breakdown":    breakdown,
			})
			return
		}
	}

	intent, err := h.Payments.CreateIntent(ctx, payments.IntentRequest{
		AmountCents: payments.ToCents(breakdown.Total),
		Currency:    "usd",
		Description: "Party On Delivery order",
		Metadata: map[string]string{
			"sessionId": fmt.Sprint(sessionID),
		},
	})
	if err != nil {
		h.Logger.Error("payment intent create failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "Failed to start payment")
		return
	}

	pending = paymentPending{IntentID: intent.ID, Amount: breakdown.Total, Tip: req.Tip}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyPaymentPending, pending); err != nil {
		h.Logger.Error("pending payment save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start payment")
		return
	}

	response.Success(w, map[string]any{
		"clientSecret": intent.ClientSecret,
		"intentId":     intent.ID,
		"amount":       breakdown.Total,
		"breakdown":    breakdown,
	})
}

type completeCheckoutRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// CompleteCheckout records the order after the customer confirmed the card
// payment on the client. The intent must have actually succeeded for the
// amount we computed; only then does the order row exist and the session
// reset for the next purchase.
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req completeCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "paymentIntentId is required")
		return
	}

	var pending paymentPending
	found, err := h.Sessions.Get(ctx, sessionID, session.KeyPaymentPending, &pending)
	if err != nil {
		h.Logger.Error("pending payment load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete checkout")
		return
	}
	if !found || pending.IntentID != req.PaymentIntentID {
		response.Error(w, http.StatusConflict, "PAYMENT_NOT_PENDING", "No matching payment is in progress for this session")
		return
	}

	intent, err := h.Payments.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		h.Logger.Error("payment intent fetch failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "Failed to verify payment")
		return
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		response.Error(w, http.StatusConflict, "PAYMENT_NOT_COMPLETED", "The payment has not completed")
		return
	}

	breakdown, c, applied, err := h.computeBreakdown(ctx, sessionID, pending.Tip)
	if err != nil {
		h.writePricingError(w, err)
		return
	}
	if intent.Amount != payments.ToCents(breakdown.Total) {
		response.Error(w, http.StatusConflict, "AMOUNT_MISMATCH", "The paid amount does not match the order total")
		return
	}

	var delivery checkout.DeliveryInfo
	var address checkout.AddressInfo
	var customer checkout.CustomerInfo
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyDeliveryInfo, &delivery)
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyAddress, &address)
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyCustomer, &customer)

	var groupOrderEnabled bool
	_, _ = h.Sessions.Get(ctx, sessionID, session.KeyGroupOrder, &groupOrderEnabled)

	var join groupJoin
	joined, err := h.Sessions.Get(ctx, sessionID, session.KeyGroupJoin, &join)
	if err != nil {
		h.Logger.Error("group join load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete checkout")
		return
	}
	var groupSourceOrderID *int64
	if joined {
		groupSourceOrderID = &join.OrderID
	}

	orderNumber := generateOrderNumber()
	var shareToken *string
	if groupOrderEnabled {
		tok := utils.CreateOrderShareToken(h.Config.ShareTokenSecret, orderNumber)
		shareToken = &tok
	}

	addressJSON, err := json.Marshal(address)
	if err != nil {
		h.Logger.Error("address marshal failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete checkout")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("order tx begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete checkout")
		return
	}
	defer tx.Rollback(ctx)

	var orderID int64
	insertOrder := `
		insert into orders (
			order_number, session_id,
			customer_first_name, customer_last_name, customer_email, customer_phone,
			delivery_date, delivery_time, delivery_address, delivery_instructions,
			subtotal, delivery_fee, sales_tax, tip, discount_code, discount_amount, total,
			stripe_payment_intent_id, share_token, group_order_enabled, group_source_order_id, status
		) values (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, 'CONFIRMED'
		)
		returning id
	`
	discountCode := ""
	if !applied.IsZero() {
		discountCode = applied.Code
	}
	err = tx.QueryRow(ctx, insertOrder,
		orderNumber, sessionID,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		delivery.Date, delivery.TimeSlot, addressJSON, delivery.Instructions,
		breakdown.Subtotal, breakdown.DeliveryFee, breakdown.SalesTax, breakdown.Tip,
		discountCode, breakdown.DiscountAmount, breakdown.Total,
		intent.ID, shareToken, groupOrderEnabled, groupSourceOrderID,
	).Scan(&orderID)
	if err != nil {
		h.Logger.Error("order insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record the order")
		return
	}

	insertItem := `
		insert into order_items (order_id, product_id, variant, title, price, quantity, image)
		values ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, item := range c.Items {
		if _, err := tx.Exec(ctx, insertItem, orderID, item.ProductID, item.Variant, item.Title, item.Price, item.Quantity, item.Image); err != nil {
			h.Logger.Error("order item insert failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record the order")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("order tx commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record the order")
		return
	}

	// Remember the order for the add-to-order flow, then reset checkout.
	now := time.Now()
	last := checkout.LastOrderInfo{
		OrderNumber:   orderNumber,
		Total:         breakdown.Total,
		Date:          now,
		Address:       delivery.Address,
		DeliveryDate:  delivery.Date,
		DeliveryTime:  delivery.TimeSlot,
		Instructions:  delivery.Instructions,
		CustomerName:  strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		ExpiresAt:     now.Add(checkout.LastOrderTTL),
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyLastOrder, last); err != nil {
		h.Logger.Warn("last order save failed", zapError(err))
	}
	if err := h.Sessions.Delete(ctx, sessionID,
		session.KeyCart, session.KeyAppliedDiscount, session.KeyCheckoutState,
		session.KeyAddToOrder, session.KeyGroupOrder, session.KeyGroupJoin,
		session.KeyPaymentPending,
	); err != nil {
		h.Logger.Warn("session reset failed", zapError(err))
	}

	// A joiner's paid items roll up onto the host's participant list.
	if joined {
		itemsJSON, err := json.Marshal(c.Items)
		if err != nil {
			h.Logger.Warn("participant items marshal failed", zapError(err))
		} else if _, err := h.DB.Exec(ctx, `
			update group_order_participants
			set items = $1, subtotal = $2
			where order_id = $3 and participant_email = $4
		`, itemsJSON, c.TotalPrice(), join.OrderID, strings.ToLower(strings.TrimSpace(customer.Email))); err != nil {
			h.Logger.Warn("participant items update failed", zapError(err))
		}
		if _, err := h.DB.Exec(ctx, `select pg_notify('group_order_updates', $1)`, join.OrderNumber); err != nil {
			h.Logger.Warn("group order notify failed", zapError(err))
		}
	}

	if err := queue.PublishOrderEvent(ctx, h.Queue, queue.OrderEvent{
		Type:        queue.EventOrderCreated,
		OrderID:     orderID,
		OrderNumber: orderNumber,
	}); err != nil {
		h.Logger.Warn("order event publish failed", zapError(err))
	}

	if groupOrderEnabled {
		if _, err := h.DB.Exec(ctx, `select pg_notify('group_order_updates', $1)`, orderNumber); err != nil {
			h.Logger.Warn("group order notify failed", zapError(err))
		}
	}

	payload := map[string]any{
		"orderId":     orderID,
		"orderNumber": orderNumber,
		"total":       breakdown.Total,
		"breakdown":   breakdown,
	}
	if shareToken != nil {
		payload["shareToken"] = *shareToken
	}
	response.Created(w, payload)
}

func generateOrderNumber() string {
	const digits = "0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			suffix[i] = '0'
			continue
		}
		suffix[i] = digits[n.Int64()]
	}
	return "POD-" + time.Now().UTC().Format("20060102") + "-" + string(suffix)
}
