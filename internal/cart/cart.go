// Package cart holds the storefront cart: product+variant lines merged by
// composite key, with totals computed over the raw line prices. Rounding is
// a display/payment concern and never happens here.
package cart

import "strings"

const defaultVariant = "default"

type Item struct {
	ProductID string  `json:"id"`
	Variant   string  `json:"variant,omitempty"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Metadata carries the display fields captured when a product first enters
// the cart. Later additions of the same line keep the original metadata.
type Metadata struct {
	Title string
	Price float64
	Image string
}

type Cart struct {
	Items []Item `json:"items"`
}

func variantKey(variant string) string {
	v := strings.TrimSpace(variant)
	if v == "" {
		return defaultVariant
	}
	return v
}

func (c *Cart) find(productID, variant string) int {
	key := variantKey(variant)
	for i, item := range c.Items {
		if item.ProductID == productID && variantKey(item.Variant) == key {
			return i
		}
	}
	return -1
}

// Add merges quantity into the (productID, variant) line, creating it when
// absent. Negative quantities decrement; a line driven to zero or below is
// removed.
func (c *Cart) Add(productID, variant string, quantity int, meta Metadata) {
	idx := c.find(productID, variant)
	if idx < 0 {
		if quantity <= 0 {
			return
		}
		c.Items = append(c.Items, Item{
			ProductID: productID,
			Variant:   strings.TrimSpace(variant),
			Title:     meta.Title,
			Price:     meta.Price,
			Image:     meta.Image,
			Quantity:  quantity,
		})
		return
	}

	next := c.Items[idx].Quantity + quantity
	if next <= 0 {
		c.removeAt(idx)
		return
	}
	c.Items[idx].Quantity = next
}

// SetQuantity replaces the line quantity outright. Zero removes the line;
// setting a quantity on an unknown line is a no-op.
func (c *Cart) SetQuantity(productID, variant string, quantity int) {
	idx := c.find(productID, variant)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		c.removeAt(idx)
		return
	}
	c.Items[idx].Quantity = quantity
}

func (c *Cart) Remove(productID, variant string) {
	if idx := c.find(productID, variant); idx >= 0 {
		c.removeAt(idx)
	}
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}

func (c *Cart) Empty() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
