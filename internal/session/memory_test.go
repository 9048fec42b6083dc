package session

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.Put(ctx, 1, KeyCart, payload{Name: "a", Count: 2}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	var got payload
	found, err := store.Get(ctx, 1, KeyCart, &got)
	if err != nil || !found {
		t.Fatalf("expected value, found=%v err=%v", found, err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Fatalf("unexpected value %+v", got)
	}

	// Other sessions are isolated.
	found, err = store.Get(ctx, 2, KeyCart, &got)
	if err != nil || found {
		t.Fatalf("expected miss for other session, found=%v err=%v", found, err)
	}
}

func TestMemoryStoreDeleteMultiple(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Put(ctx, 7, KeyGroupOrder, "ORD-1")
	_ = store.Put(ctx, 7, KeyAddToOrder, true)
	_ = store.Put(ctx, 7, KeyCustomer, "keep")

	if err := store.Delete(ctx, 7, KeyGroupOrder, KeyAddToOrder); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if found, _ := store.Get(ctx, 7, KeyGroupOrder, nil); found {
		t.Fatalf("expected group order key removed")
	}
	if found, _ := store.Get(ctx, 7, KeyAddToOrder, nil); found {
		t.Fatalf("expected add-to-order key removed")
	}
	if found, _ := store.Get(ctx, 7, KeyCustomer, nil); !found {
		t.Fatalf("unrelated key must survive")
	}
}
