package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"party-on-delivery/internal/checkout"
	"party-on-delivery/pkg/response"
)

type geocodeCachedValue struct {
	Data      any
	ExpiresAt time.Time
}

type geocodeRateLimitBucket struct {
	Count   int
	ResetAt time.Time
}

var (
	geocodeCacheMu   sync.Mutex
	geocodeCache     = map[string]geocodeCachedValue{}
	geocodeRateMu    sync.Mutex
	geocodeRateLimit = map[string]geocodeRateLimitBucket{}
)

const (
	geocodeCacheTTL     = 24 * time.Hour
	geocodeRateWindow   = 60 * time.Second
	geocodeRateLimitMax = 30
)

const geocodeUserAgent = "Party On Delivery (https://partyondelivery.com)"

// PublicAddressSearch resolves a free-text address query to candidates with
// coordinates, feeding the address step's autocomplete. Results are cached
// and the upstream is shielded by a per-IP rate limit.
func (h *Handler) PublicAddressSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if limited, retryAfter := geocodeIsRateLimited(clientIP(r)); limited {
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again shortly.")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "q is required")
		return
	}

	cacheKey := "search:" + strings.ToLower(q)
	if data, ok := geocodeGetCache(cacheKey); ok {
		response.Success(w, data)
		return
	}

	endpoint := "https://nominatim.openstreetmap.org/search?format=jsonv2&addressdetails=1&limit=5&countrycodes=us&q=" + url.QueryEscape(q)
	rows, err := fetchJSONArray(ctx, endpoint)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to search address")
		return
	}

	results := make([]map[string]any, 0)
	for _, row := range rows {
		rowMap, ok := row.(map[string]any)
		if !ok {
			continue
		}
		lat, okLat := parseFloat(rowMap["lat"])
		lng, okLng := parseFloat(rowMap["lon"])
		if !okLat || !okLng {
			continue
		}

		address := buildAddress(getMap(rowMap, "address"))
		address.Latitude = &lat
		address.Longitude = &lng

		results = append(results, map[string]any{
			"lat":              lat,
			"lng":              lng,
			"displayName":      strings.TrimSpace(getString(rowMap, "display_name")),
			"formattedAddress": checkout.FormatAddress(address),
			"address":          address,
		})
	}

	data := map[string]any{"query": q, "results": results}
	geocodeSetCache(cacheKey, data)
	response.Success(w, data)
}

// PublicReverseGeocode maps coordinates back to a structured address, used
// by the "use my location" shortcut.
func (h *Handler) PublicReverseGeocode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if limited, retryAfter := geocodeIsRateLimited(clientIP(r)); limited {
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again shortly.")
		return
	}

	lat, okLat := parseFloatQuery(r, "lat")
	lng, okLng := parseFloatQuery(r, "lng")
	if !okLat || !okLng {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng are required")
		return
	}

	cacheKey := "reverse:" + roundCoord(lat) + "," + roundCoord(lng)
	if data, ok := geocodeGetCache(cacheKey); ok {
		response.Success(w, data)
		return
	}

	endpoint := "https://nominatim.openstreetmap.org/reverse?format=jsonv2&zoom=18&addressdetails=1&lat=" + urlQueryFloat(lat) + "&lon=" + urlQueryFloat(lng)
	body, err := fetchJSON(ctx, endpoint)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to resolve address")
		return
	}

	address := buildAddress(getMap(body, "address"))
	address.Latitude = &lat
	address.Longitude = &lng

	data := map[string]any{
		"displayName":      strings.TrimSpace(getString(body, "display_name")),
		"formattedAddress": checkout.FormatAddress(address),
		"address":          address,
	}
	geocodeSetCache(cacheKey, data)
	response.Success(w, data)
}

// buildAddress reshapes a Nominatim address object into the checkout's
// address fields.
func buildAddress(raw map[string]any) checkout.AddressInfo {
	if raw == nil {
		return checkout.AddressInfo{}
	}

	street := pickFirstString(raw, "road", "pedestrian", "footway", "path")
	if house := pickFirstString(raw, "house_number"); house != "" && street != "" {
		street = house + " " + street
	}

	return checkout.AddressInfo{
		Street:  street,
		City:    pickFirstString(raw, "city", "town", "village", "municipality", "county"),
		State:   pickFirstString(raw, "state", "region"),
		ZipCode: pickFirstString(raw, "postcode"),
	}
}

func pickFirstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				trimmed := strings.TrimSpace(s)
				if trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key]; ok {
		if obj, ok := v.(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func geocodeGetCache(key string) (any, bool) {
	geocodeCacheMu.Lock()
	defer geocodeCacheMu.Unlock()
	if cached, ok := geocodeCache[key]; ok {
		if cached.ExpiresAt.After(time.Now()) {
			return cached.Data, true
		}
		delete(geocodeCache, key)
	}
	return nil, false
}

func geocodeSetCache(key string, data any) {
	geocodeCacheMu.Lock()
	defer geocodeCacheMu.Unlock()
	geocodeCache[key] = geocodeCachedValue{Data: data, ExpiresAt: time.Now().Add(geocodeCacheTTL)}
}

func geocodeIsRateLimited(ip string) (bool, string) {
	geocodeRateMu.Lock()
	defer geocodeRateMu.Unlock()
	if ip == "" {
		ip = "unknown"
	}

	now := time.Now()
	bucket, ok := geocodeRateLimit[ip]
	if !ok || now.After(bucket.ResetAt) {
		geocodeRateLimit[ip] = geocodeRateLimitBucket{Count: 1, ResetAt: now.Add(geocodeRateWindow)}
		return false, ""
	}

	if bucket.Count >= geocodeRateLimitMax {
		retry := int(math.Max(1, math.Ceil(bucket.ResetAt.Sub(now).Seconds())))
		return true, strconv.Itoa(retry)
	}

	bucket.Count++
	geocodeRateLimit[ip] = bucket
	return false, ""
}

func parseFloatQuery(r *http.Request, key string) (float64, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || !isFinite(parsed) {
		return 0, false
	}
	return parsed, true
}

func parseFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, isFinite(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, isFinite(parsed)
	default:
		return 0, false
	}
}

func roundCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', 5, 64)
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func urlQueryFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func fetchJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	client := &http.Client{Timeout: 8 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", geocodeUserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream_error")
	}

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func fetchJSONArray(ctx context.Context, endpoint string) ([]any, error) {
	client := &http.Client{Timeout: 8 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", geocodeUserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream_error")
	}

	var payload []any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
