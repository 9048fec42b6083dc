package handlers

import (
	"context"
	"net/http"
	"strings"

	"party-on-delivery/pkg/response"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionTokenHeader = "X-Session-Token"

// CreateSession mints an anonymous storefront session. The returned token is
// the only credential a customer carries; every cart and checkout call sends
// it back in the X-Session-Token header.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := uuid.NewString()
	var id int64
	query := `insert into sessions (token) values ($1) returning id`
	if err := h.DB.QueryRow(ctx, query, token).Scan(&id); err != nil {
		h.Logger.Error("session create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session")
		return
	}

	response.Created(w, map[string]any{"token": token})
}

// resolveSession maps the request's session token to its row id, touching
// last_seen_at on the way. Returns 0 when the header is absent or unknown.
func (h *Handler) resolveSession(ctx context.Context, r *http.Request) (int64, error) {
	token := strings.TrimSpace(r.Header.Get(sessionTokenHeader))
	if token == "" {
		return 0, nil
	}

	var id int64
	query := `update sessions set last_seen_at = now() where token = $1 returning id`
	err := h.DB.QueryRow(ctx, query, token).Scan(&id)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// requireSession resolves the session or writes the error response itself.
// Callers bail out when ok is false.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sessionID, err := h.resolveSession(r.Context(), r)
	if err != nil {
		h.Logger.Error("session resolve failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve session")
		return 0, false
	}
	if sessionID == 0 {
		response.Error(w, http.StatusUnauthorized, "SESSION_REQUIRED", "A valid session token is required")
		return 0, false
	}
	return sessionID, true
}
