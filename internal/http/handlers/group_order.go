package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"party-on-delivery/internal/cart"
	"party-on-delivery/internal/checkout"
	"party-on-delivery/internal/queue"
	"party-on-delivery/internal/session"
	"party-on-delivery/internal/utils"
	"party-on-delivery/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type groupOrderToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// SetGroupOrder flags the session's upcoming order as a group order. The
// share link itself is minted at checkout completion.
func (h *Handler) SetGroupOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req groupOrderToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if !req.Enabled {
		if err := h.Sessions.Delete(ctx, sessionID, session.KeyGroupOrder); err != nil {
			h.Logger.Error("group order clear failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update group order")
			return
		}
		response.Success(w, map[string]any{"enabled": false})
		return
	}

	if err := h.Sessions.Put(ctx, sessionID, session.KeyGroupOrder, true); err != nil {
		h.Logger.Error("group order save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update group order")
		return
	}
	response.Success(w, map[string]any{"enabled": true})
}

// FetchGroupOrderPayload builds the public view of a group order: host first
// name, delivery slot, and every participant's contribution. It is shared by
// the REST resolve endpoint and the websocket broadcaster.
func FetchGroupOrderPayload(ctx context.Context, db *pgxpool.Pool, orderNumber string) (map[string]any, bool, error) {
	var (
		orderID      int64
		hostName     string
		deliveryDate string
		deliveryTime string
		addressJSON  []byte
	)
	query := `
		select id, coalesce(customer_first_name, ''), coalesce(delivery_date, ''),
		       coalesce(delivery_time, ''), delivery_address
		from orders
		where order_number = $1 and group_order_enabled
	`
	err := db.QueryRow(ctx, query, orderNumber).Scan(&orderID, &hostName, &deliveryDate, &deliveryTime, &addressJSON)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	// Invite viewers only see the delivery area, not the full address.
	var address checkout.AddressInfo
	_ = json.Unmarshal(addressJSON, &address)

	rows, err := db.Query(ctx, `
		select coalesce(participant_name, ''), items, subtotal::float8, joined_at
		from group_order_participants
		where order_id = $1
		order by joined_at
	`, orderID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	participants := make([]map[string]any, 0)
	for rows.Next() {
		var (
			name     string
			itemsRaw []byte
			subtotal float64
			joinedAt time.Time
		)
		if err := rows.Scan(&name, &itemsRaw, &subtotal, &joinedAt); err != nil {
			return nil, false, err
		}
		var items []cart.Item
		_ = json.Unmarshal(itemsRaw, &items)
		participants = append(participants, map[string]any{
			"name":     name,
			"items":    items,
			"subtotal": subtotal,
			"joinedAt": joinedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	payload := map[string]any{
		"orderNumber":  orderNumber,
		"hostName":     hostName,
		"deliveryDate": deliveryDate,
		"deliveryTime": deliveryTime,
		"city":         address.City,
		"state":        address.State,
		"open":         groupOrderOpen(deliveryDate),
		"participants": participants,
	}
	return payload, true, nil
}

// groupOrderOpen reports whether friends can still join: the delivery date
// must not have passed. An unparsable date keeps the order open.
func groupOrderOpen(deliveryDate string) bool {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(deliveryDate))
	if err != nil {
		return true
	}
	today, _ := time.Parse("2006-01-02", time.Now().Format("2006-01-02"))
	return !d.Before(today)
}

func (h *Handler) resolveShareToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := readPathString(r, "token")
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	orderNumber, ok := utils.ParseOrderShareToken(h.Config.ShareTokenSecret, token)
	if !ok {
		response.Error(w, http.StatusNotFound, "GROUP_ORDER_NOT_FOUND", "Group order not found")
		return "", false
	}
	return orderNumber, true
}

// GroupOrderResolve renders the invite page data for a share link.
func (h *Handler) GroupOrderResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderNumber, ok := h.resolveShareToken(w, r)
	if !ok {
		return
	}

	payload, found, err := FetchGroupOrderPayload(ctx, h.DB, orderNumber)
	if err != nil {
		h.Logger.Error("group order fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load group order")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "GROUP_ORDER_NOT_FOUND", "Group order not found")
		return
	}
	response.Success(w, payload)
}

type groupOrderJoinRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// groupJoin marks a session that joined someone else's group order. It is
// read by the pricing path (free delivery) and consumed at checkout
// completion to link the joiner's order back to the host's.
type groupJoin struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// GroupOrderJoin registers the viewer on the host's order and copies the
// group's delivery slot and address into the viewer's session, so they can
// pick products and run their own checkout with free delivery. Joining twice
// with the same email refreshes the membership instead of duplicating it.
func (h *Handler) GroupOrderJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	orderNumber, ok := h.resolveShareToken(w, r)
	if !ok {
		return
	}

	var req groupOrderJoinRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || !checkout.ValidEmail(req.Email) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "name and a valid email are required")
		return
	}

	var (
		orderID      int64
		deliveryDate string
		deliveryTime string
		addressJSON  []byte
	)
	err := h.DB.QueryRow(ctx, `
		select id, coalesce(delivery_date, ''), coalesce(delivery_time, ''), delivery_address
		from orders
		where order_number = $1 and group_order_enabled
	`, orderNumber).Scan(&orderID, &deliveryDate, &deliveryTime, &addressJSON)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "GROUP_ORDER_NOT_FOUND", "Group order not found")
		return
	}
	if err != nil {
		h.Logger.Error("group order lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}
	if !groupOrderOpen(deliveryDate) {
		response.Error(w, http.StatusConflict, "GROUP_ORDER_CLOSED", "This group order is no longer accepting additions")
		return
	}

	// Membership first; the joiner's items arrive when their checkout
	// completes, so a re-join must not wipe an earlier contribution.
	upsert := `
		insert into group_order_participants (order_id, participant_name, participant_email, items, subtotal)
		values ($1, $2, $3, '[]'::jsonb, 0)
		on conflict (order_id, participant_email)
		do update set participant_name = excluded.participant_name,
		              joined_at = now()
	`
	if _, err := h.DB.Exec(ctx, upsert, orderID, req.Name, req.Email); err != nil {
		h.Logger.Error("participant upsert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}

	var address checkout.AddressInfo
	_ = json.Unmarshal(addressJSON, &address)
	delivery := checkout.DeliveryInfo{
		Date:     deliveryDate,
		TimeSlot: deliveryTime,
		Address:  checkout.FormatAddress(address),
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyDeliveryInfo, delivery); err != nil {
		h.Logger.Error("delivery info save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyAddress, address); err != nil {
		h.Logger.Error("address save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyGroupJoin, groupJoin{OrderID: orderID, OrderNumber: orderNumber}); err != nil {
		h.Logger.Error("group join save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}

	// The slot and address came from a placed order; the joiner starts at
	// product selection with those steps already confirmed.
	state, err := h.loadCheckoutState(ctx, sessionID)
	if err == nil {
		state = state.Confirm(checkout.StepDateTime).Confirm(checkout.StepAddress)
		err = h.Sessions.Put(ctx, sessionID, session.KeyCheckoutState, state)
	}
	if err != nil {
		h.Logger.Error("checkout state save failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join group order")
		return
	}

	if err := queue.PublishOrderEvent(ctx, h.Queue, queue.OrderEvent{
		Type:        queue.EventParticipantJoined,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Participant: req.Name,
	}); err != nil {
		h.Logger.Warn("participant event publish failed", zapError(err))
	}
	if _, err := h.DB.Exec(ctx, `select pg_notify('group_order_updates', $1)`, orderNumber); err != nil {
		h.Logger.Warn("group order notify failed", zapError(err))
	}

	payload, _, err := FetchGroupOrderPayload(ctx, h.DB, orderNumber)
	if err != nil {
		h.Logger.Error("group order fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load group order")
		return
	}
	response.Success(w, map[string]any{"joined": true, "groupOrder": payload})
}

// GroupOrderDecline dismisses an invite for this session without touching
// the host's order. A session that had joined gets the copied delivery keys
// cleared too, so the next checkout starts clean.
func (h *Handler) GroupOrderDecline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if _, ok := h.resolveShareToken(w, r); !ok {
		return
	}

	var join groupJoin
	joined, err := h.Sessions.Get(ctx, sessionID, session.KeyGroupJoin, &join)
	if err != nil {
		h.Logger.Error("group join load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to decline the invite")
		return
	}

	keys := []session.Key{session.KeyGroupJoin}
	if joined {
		keys = append(keys, session.KeyDeliveryInfo, session.KeyAddress, session.KeyCheckoutState)
	}
	if err := h.Sessions.Delete(ctx, sessionID, keys...); err != nil {
		h.Logger.Error("group order decline failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to decline the invite")
		return
	}
	response.Success(w, map[string]any{"declined": true})
}
