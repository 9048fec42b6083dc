// Package catalog fetches product listings from the Shopify storefront and
// normalizes them for the delivery app tabs. Responses are cached in-process
// with a TTL since collections change rarely relative to browse traffic.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotConfigured      = errors.New("shopify store domain is not configured")
	ErrCollectionNotFound = errors.New("collection not found")
)

type Variant struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type Product struct {
	ID       string    `json:"id"`
	Handle   string    `json:"handle"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Image    string    `json:"image,omitempty"`
	Variants []Variant `json:"variants"`
}

type cachedCollection struct {
	Products  []Product
	ExpiresAt time.Time
}

type Client struct {
	Domain string
	TTL    time.Duration

	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]cachedCollection
}

func New(domain string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		Domain:     strings.TrimSpace(domain),
		TTL:        ttl,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		cache:      make(map[string]cachedCollection),
	}
}

// Collection returns the products for a collection handle, serving from
// cache while fresh.
func (c *Client) Collection(ctx context.Context, handle string) ([]Product, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" {
		return nil, ErrCollectionNotFound
	}
	if c.Domain == "" {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	if cached, ok := c.cache[handle]; ok && cached.ExpiresAt.After(time.Now()) {
		products := cached.Products
		c.mu.Unlock()
		return products, nil
	}
	c.mu.Unlock()

	products, err := c.fetchCollection(ctx, handle)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[handle] = cachedCollection{Products: products, ExpiresAt: time.Now().Add(c.TTL)}
	c.mu.Unlock()

	return products, nil
}

type shopifyVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID       int64            `json:"id"`
	Handle   string           `json:"handle"`
	Title    string           `json:"title"`
	Images   []shopifyImage   `json:"images"`
	Variants []shopifyVariant `json:"variants"`
}

type collectionResponse struct {
	Products []shopifyProduct `json:"products"`
}

func (c *Client) fetchCollection(ctx context.Context, handle string) ([]Product, error) {
	endpoint := "https://" + c.Domain + "/collections/" + url.PathEscape(handle) + "/products.json?limit=250"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Party On Delivery (https://partyondelivery.com)")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrCollectionNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("shopify responded %d", res.StatusCode)
	}

	var payload collectionResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return normalizeProducts(payload.Products), nil
}

func normalizeProducts(raw []shopifyProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		product := Product{
			ID:     strconv.FormatInt(p.ID, 10),
			Handle: p.Handle,
			Title:  p.Title,
		}
		if len(p.Images) > 0 {
			product.Image = p.Images[0].Src
		}
		for _, v := range p.Variants {
			price := parsePrice(v.Price)
			product.Variants = append(product.Variants, Variant{
				ID:    strconv.FormatInt(v.ID, 10),
				Title: v.Title,
				Price: price,
			})
		}
		if len(product.Variants) > 0 {
			product.Price = product.Variants[0].Price
		}
		products = append(products, product)
	}
	return products
}

func parsePrice(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}
