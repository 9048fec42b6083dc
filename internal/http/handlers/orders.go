package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"party-on-delivery/internal/cart"
	"party-on-delivery/pkg/response"

	"github.com/jackc/pgx/v5"
)

type orderDetail struct {
	ID                   int64           `json:"id"`
	OrderNumber          string          `json:"orderNumber"`
	CustomerFirstName    string          `json:"customerFirstName"`
	CustomerLastName     string          `json:"customerLastName"`
	CustomerEmail        string          `json:"customerEmail"`
	CustomerPhone        string          `json:"customerPhone"`
	DeliveryDate         string          `json:"deliveryDate"`
	DeliveryTime         string          `json:"deliveryTime"`
	DeliveryAddress      json.RawMessage `json:"deliveryAddress"`
	DeliveryInstructions string          `json:"deliveryInstructions,omitempty"`
	Subtotal             float64         `json:"subtotal"`
	DeliveryFee          float64         `json:"deliveryFee"`
	SalesTax             float64         `json:"salesTax"`
	Tip                  float64         `json:"tip"`
	DiscountCode         string          `json:"discountCode,omitempty"`
	DiscountAmount       float64         `json:"discountAmount"`
	Total                float64         `json:"total"`
	GroupOrderEnabled    bool            `json:"groupOrderEnabled"`
	ShareToken           string          `json:"shareToken,omitempty"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
	Items                []cart.Item     `json:"items"`
}

func (h *Handler) fetchOrderDetail(ctx context.Context, where string, arg any) (*orderDetail, error) {
	var d orderDetail
	var shareToken *string
	query := `
		select id, order_number,
		       coalesce(customer_first_name, ''), coalesce(customer_last_name, ''),
		       coalesce(customer_email, ''), coalesce(customer_phone, ''),
		       coalesce(delivery_date, ''), coalesce(delivery_time, ''),
		       delivery_address, coalesce(delivery_instructions, ''),
		       subtotal::float8, delivery_fee::float8, sales_tax::float8, tip::float8,
		       coalesce(discount_code, ''), discount_amount::float8, total::float8,
		       group_order_enabled, share_token, status, created_at
		from orders
		where ` + where
	err := h.DB.QueryRow(ctx, query, arg).Scan(
		&d.ID, &d.OrderNumber,
		&d.CustomerFirstName, &d.CustomerLastName,
		&d.CustomerEmail, &d.CustomerPhone,
		&d.DeliveryDate, &d.DeliveryTime,
		&d.DeliveryAddress, &d.DeliveryInstructions,
		&d.Subtotal, &d.DeliveryFee, &d.SalesTax, &d.Tip,
		&d.DiscountCode, &d.DiscountAmount, &d.Total,
		&d.GroupOrderEnabled, &shareToken, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if shareToken != nil {
		d.ShareToken = *shareToken
	}

	rows, err := h.DB.Query(ctx, `
		select product_id, coalesce(variant, ''), title, price::float8, quantity, coalesce(image, '')
		from order_items
		where order_id = $1
		order by id
	`, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Items = make([]cart.Item, 0)
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ProductID, &item.Variant, &item.Title, &item.Price, &item.Quantity, &item.Image); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, item)
	}
	return &d, rows.Err()
}

// PublicOrderDetail returns a completed order to the session that placed it.
func (h *Handler) PublicOrderDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	orderNumber := strings.TrimSpace(readPathString(r, "orderNumber"))
	if orderNumber == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "orderNumber is required")
		return
	}

	detail, err := h.fetchOrderDetail(ctx, `order_number = $1`, orderNumber)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	// Only the placing session may read it back.
	var ownerSession int64
	if err := h.DB.QueryRow(ctx, `select session_id from orders where id = $1`, detail.ID).Scan(&ownerSession); err != nil || ownerSession != sessionID {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	response.Success(w, detail)
}

// AdminOrdersList pages through orders newest first.
func (h *Handler) AdminOrdersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	rows, err := h.DB.Query(ctx, `
		select id, order_number,
		       coalesce(customer_first_name, '') || ' ' || coalesce(customer_last_name, ''),
		       coalesce(customer_email, ''),
		       coalesce(delivery_date, ''), coalesce(delivery_time, ''),
		       total::float8, group_order_enabled, status, created_at
		from orders
		order by created_at desc
		limit $1 offset $2
	`, limit, offset)
	if err != nil {
		h.Logger.Error("orders list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
		return
	}
	defer rows.Close()

	orders := make([]map[string]any, 0)
	for rows.Next() {
		var (
			id           int64
			orderNumber  string
			customerName string
			email        string
			deliveryDate string
			deliveryTime string
			total        float64
			groupOrder   bool
			status       string
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &orderNumber, &customerName, &email, &deliveryDate, &deliveryTime, &total, &groupOrder, &status, &createdAt); err != nil {
			h.Logger.Error("orders scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
			return
		}
		orders = append(orders, map[string]any{
			"id":           id,
			"orderNumber":  orderNumber,
			"customerName": strings.TrimSpace(customerName),
			"email":        email,
			"deliveryDate": deliveryDate,
			"deliveryTime": deliveryTime,
			"total":        total,
			"groupOrder":   groupOrder,
			"status":       status,
			"createdAt":    createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("orders list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
		return
	}

	response.Success(w, map[string]any{"orders": orders, "limit": limit, "offset": offset})
}

// AdminOrderDetail returns the full order including group participants.
func (h *Handler) AdminOrderDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	detail, err := h.fetchOrderDetail(ctx, `id = $1`, id)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	payload := map[string]any{"order": detail}
	if detail.GroupOrderEnabled {
		if group, found, gerr := FetchGroupOrderPayload(ctx, h.DB, detail.OrderNumber); gerr == nil && found {
			payload["groupOrder"] = group
		}
	}
	response.Success(w, payload)
}
