package handlers

import (
	"context"
	"testing"
	"time"

	"party-on-delivery/internal/cart"
	"party-on-delivery/internal/checkout"
	"party-on-delivery/internal/config"
	"party-on-delivery/internal/discount"
	"party-on-delivery/internal/session"

	"go.uber.org/zap"
)

func quoteTestHandler() *Handler {
	return &Handler{
		Logger:   zap.NewNop(),
		Config:   config.Config{DeliveryFeeBase: 9.99},
		Sessions: session.NewMemoryStore(),
	}
}

func seedCart(t *testing.T, h *Handler, sessionID int64) {
	t.Helper()
	c := cart.Cart{Items: []cart.Item{
		{ProductID: "prod-1", Title: "Tito's Handmade Vodka", Price: 25, Quantity: 4},
	}}
	if err := h.Sessions.Put(context.Background(), sessionID, session.KeyCart, c); err != nil {
		t.Fatalf("cart seed failed: %v", err)
	}
}

func TestComputeBreakdownBundleOverridesCode(t *testing.T) {
	ctx := context.Background()
	h := quoteTestHandler()
	const sessionID = int64(1)
	seedCart(t, h, sessionID)

	code, lookupErr := discount.Lookup("PARTYON10")
	if lookupErr != nil {
		t.Fatalf("unexpected lookup error: %v", lookupErr)
	}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyAppliedDiscount, code); err != nil {
		t.Fatalf("discount seed failed: %v", err)
	}

	deliveryDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	last := checkout.LastOrderInfo{
		OrderNumber:  "POD-20260110-0042",
		Total:        182.44,
		Address:      "100 Congress Ave, Austin, TX, 78701",
		DeliveryDate: deliveryDate,
		DeliveryTime: "5:00 PM - 7:00 PM",
		ExpiresAt:    time.Now().Add(29 * 24 * time.Hour),
	}
	delivery := checkout.DeliveryInfo{
		Date:     deliveryDate,
		TimeSlot: "5:00 PM - 7:00 PM",
		Address:  "100 Congress Ave, Austin, TX, 78701",
	}
	for key, value := range map[session.Key]any{
		session.KeyAddToOrder:   true,
		session.KeyLastOrder:    last,
		session.KeyDeliveryInfo: delivery,
	} {
		if err := h.Sessions.Put(ctx, sessionID, key, value); err != nil {
			t.Fatalf("seed %s failed: %v", key, err)
		}
	}

	breakdown, _, applied, err := h.computeBreakdown(ctx, sessionID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.Code != discount.BundleCode {
		t.Fatalf("expected the bundle discount to replace the code, got %q", applied.Code)
	}
	if breakdown.DiscountAmount != 0 {
		t.Fatalf("bundled orders must not keep the percentage discount, got %v", breakdown.DiscountAmount)
	}
	if breakdown.DeliveryFee != 0 || !breakdown.FreeShipping {
		t.Fatalf("expected free delivery while bundled, got %+v", breakdown)
	}
}

func TestComputeBreakdownGroupJoinFreeDelivery(t *testing.T) {
	ctx := context.Background()
	h := quoteTestHandler()
	const sessionID = int64(2)
	seedCart(t, h, sessionID)

	join := groupJoin{OrderID: 77, OrderNumber: "POD-20260110-0042"}
	if err := h.Sessions.Put(ctx, sessionID, session.KeyGroupJoin, join); err != nil {
		t.Fatalf("join seed failed: %v", err)
	}

	breakdown, _, applied, err := h.computeBreakdown(ctx, sessionID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.DeliveryFee != 0 || !breakdown.FreeShipping {
		t.Fatalf("expected free delivery for a group joiner, got %+v", breakdown)
	}
	if applied.Code != discount.BundleCode {
		t.Fatalf("expected the bundle discount for a group joiner, got %q", applied.Code)
	}
}
