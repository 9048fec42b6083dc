package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"party-on-delivery/internal/auth"
	"party-on-delivery/internal/middleware"
	"party-on-delivery/pkg/response"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}

	var (
		id           int64
		name         string
		passwordHash string
		active       bool
	)
	query := `select id, coalesce(name, ''), password_hash, is_active from admin_users where lower(email) = $1`
	err := h.DB.QueryRow(ctx, query, req.Email).Scan(&id, &name, &passwordHash, &active)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	if err != nil {
		h.Logger.Error("admin lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in")
		return
	}
	if !active {
		response.Error(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This admin account is disabled")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	ttl := time.Duration(h.Config.JWTExpirySeconds) * time.Second
	token, err := auth.CreateAccessToken(h.Config.JWTSecret, fmt.Sprint(id), req.Email, name, ttl)
	if err != nil {
		h.Logger.Error("token create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in")
		return
	}

	response.Success(w, map[string]any{
		"token":     token,
		"expiresIn": int64(ttl.Seconds()),
		"admin": map[string]any{
			"id":    id,
			"email": req.Email,
			"name":  name,
		},
	})
}

// AdminMe echoes the authenticated admin from the request context.
func (h *Handler) AdminMe(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAdminContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization required")
		return
	}
	response.Success(w, map[string]any{
		"id":    ac.AdminID,
		"email": ac.Email,
		"name":  ac.Name,
	})
}
