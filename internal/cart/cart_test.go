package cart

import "testing"

func TestAddMergesSameLine(t *testing.T) {
	var c Cart
	c.Add("prod-1", "750ml", 2, Metadata{Title: "Tito's Vodka", Price: 24.99})
	c.Add("prod-1", "750ml", 3, Metadata{Title: "Tito's Vodka", Price: 24.99})

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", c.Items[0].Quantity)
	}
}

func TestVariantsAreDistinctLines(t *testing.T) {
	var c Cart
	c.Add("prod-1", "750ml", 1, Metadata{Price: 24.99})
	c.Add("prod-1", "1.75L", 1, Metadata{Price: 39.99})
	c.Add("prod-1", "", 1, Metadata{Price: 24.99})

	if len(c.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(c.Items))
	}
}

func TestEmptyVariantMatchesDefault(t *testing.T) {
	var c Cart
	c.Add("prod-1", "", 1, Metadata{Price: 10})
	c.Add("prod-1", "default", 2, Metadata{Price: 10})

	if len(c.Items) != 1 {
		t.Fatalf("expected empty variant and default to merge, got %d lines", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", c.Items[0].Quantity)
	}
}

func TestQuantityNeverNegative(t *testing.T) {
	var c Cart
	c.Add("prod-1", "", 2, Metadata{Price: 10})
	c.Add("prod-1", "", -5, Metadata{})

	if len(c.Items) != 0 {
		t.Fatalf("expected line removal when driven below zero, got %d lines", len(c.Items))
	}

	c.Add("prod-2", "", -1, Metadata{})
	if len(c.Items) != 0 {
		t.Fatalf("negative add on missing line must not create it")
	}

	for _, item := range c.Items {
		if item.Quantity < 0 {
			t.Fatalf("line %s has negative quantity %d", item.ProductID, item.Quantity)
		}
	}
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	var c Cart
	c.Add("prod-1", "", 4, Metadata{Price: 10})
	c.SetQuantity("prod-1", "", 0)

	if !c.IsEmpty() {
		t.Fatalf("expected empty cart after setting quantity to zero")
	}
}

func TestTotals(t *testing.T) {
	var c Cart
	c.Add("prod-1", "", 2, Metadata{Price: 24.99})
	c.Add("prod-2", "6-pack", 3, Metadata{Price: 11.50})

	if got := c.TotalItems(); got != 5 {
		t.Fatalf("expected 5 total items, got %d", got)
	}

	want := 2*24.99 + 3*11.50
	if got := c.TotalPrice(); got != want {
		t.Fatalf("expected total %v, got %v", want, got)
	}
}

func TestRemoveAndEmpty(t *testing.T) {
	var c Cart
	c.Add("prod-1", "", 1, Metadata{Price: 10})
	c.Add("prod-2", "", 1, Metadata{Price: 20})

	c.Remove("prod-1", "")
	if len(c.Items) != 1 || c.Items[0].ProductID != "prod-2" {
		t.Fatalf("expected only prod-2 to remain")
	}

	c.Empty()
	if !c.IsEmpty() || c.TotalItems() != 0 {
		t.Fatalf("expected cart to be empty")
	}
}
