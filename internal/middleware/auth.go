package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"party-on-delivery/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const adminContextKey contextKey = "adminContext"

type AdminContext struct {
	AdminID int64
	Email   string
	Name    string
}

func WithAdminContext(ctx context.Context, ac *AdminContext) context.Context {
	return context.WithValue(ctx, adminContextKey, ac)
}

func GetAdminContext(ctx context.Context) (*AdminContext, bool) {
	value := ctx.Value(adminContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AdminContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	}

	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// AdminAuth guards /api/admin routes. The token must verify and the admin
// row must still exist and be active; deleting an admin revokes access
// without waiting for token expiry.
func AdminAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}

			adminID, err := strconv.ParseInt(claims.AdminID, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			var (
				email  string
				name   string
				active bool
			)
			query := `select email, coalesce(name, ''), is_active from admin_users where id = $1`
			if err := db.QueryRow(r.Context(), query, adminID).Scan(&email, &name, &active); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Admin account not found")
				return
			}
			if !active {
				writeAuthError(w, http.StatusForbidden, "Admin account is disabled")
				return
			}

			ctx := WithAdminContext(r.Context(), &AdminContext{
				AdminID: adminID,
				Email:   email,
				Name:    name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
