package catalog

import "testing"

func TestNormalizeProducts(t *testing.T) {
	raw := []shopifyProduct{
		{
			ID:     1234,
			Handle: "titos-750",
			Title:  "Tito's Handmade Vodka",
			Images: []shopifyImage{{Src: "https://cdn.example.com/titos.jpg"}},
			Variants: []shopifyVariant{
				{ID: 1, Title: "750ml", Price: "24.99"},
				{ID: 2, Title: "1.75L", Price: "39.99"},
			},
		},
		{
			ID:    5678,
			Title: "No Variants",
		},
	}

	products := normalizeProducts(raw)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	first := products[0]
	if first.ID != "1234" || first.Price != 24.99 {
		t.Fatalf("expected first variant price as product price, got %+v", first)
	}
	if first.Image != "https://cdn.example.com/titos.jpg" {
		t.Fatalf("expected first image, got %q", first.Image)
	}
	if len(first.Variants) != 2 || first.Variants[1].Price != 39.99 {
		t.Fatalf("unexpected variants %+v", first.Variants)
	}

	if products[1].Price != 0 || len(products[1].Variants) != 0 {
		t.Fatalf("product without variants must have zero price, got %+v", products[1])
	}
}

func TestParsePrice(t *testing.T) {
	if parsePrice(" 12.50 ") != 12.5 {
		t.Fatalf("expected 12.5")
	}
	if parsePrice("free") != 0 {
		t.Fatalf("unparseable prices fall back to 0")
	}
}
