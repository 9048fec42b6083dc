package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"party-on-delivery/internal/catalog"
	"party-on-delivery/pkg/response"
)

type catalogRateBucket struct {
	Count   int
	ResetAt time.Time
}

var (
	catalogRateMu    sync.Mutex
	catalogRateLimit = map[string]catalogRateBucket{}
)

const (
	catalogRateWindow   = 60 * time.Second
	catalogRateLimitMax = 60
)

func catalogIsRateLimited(ip string) bool {
	catalogRateMu.Lock()
	defer catalogRateMu.Unlock()
	if ip == "" {
		ip = "unknown"
	}

	now := time.Now()
	bucket, ok := catalogRateLimit[ip]
	if !ok || now.After(bucket.ResetAt) {
		catalogRateLimit[ip] = catalogRateBucket{Count: 1, ResetAt: now.Add(catalogRateWindow)}
		return false
	}
	if bucket.Count >= catalogRateLimitMax {
		return true
	}
	bucket.Count++
	catalogRateLimit[ip] = bucket
	return false
}

// PublicCollection proxies a product collection from the commerce backend,
// normalized for the storefront tabs. Responses are cached upstream of this
// handler by the catalog client's TTL cache.
func (h *Handler) PublicCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if catalogIsRateLimited(clientIP(r)) {
		response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again shortly.")
		return
	}

	handle := strings.TrimSpace(readPathString(r, "handle"))
	if handle == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "handle is required")
		return
	}

	products, err := h.Catalog.Collection(ctx, handle)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotConfigured):
			response.Error(w, http.StatusServiceUnavailable, "CATALOG_DISABLED", "The product catalog is not configured")
		case errors.Is(err, catalog.ErrCollectionNotFound):
			response.Error(w, http.StatusNotFound, "COLLECTION_NOT_FOUND", "Collection not found")
		default:
			h.Logger.Error("collection fetch failed", zapError(err))
			response.Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to load the collection")
		}
		return
	}

	response.Success(w, map[string]any{
		"handle":   handle,
		"products": products,
	})
}
