package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"party-on-delivery/internal/appconfig"
	"party-on-delivery/internal/utils"
	"party-on-delivery/pkg/response"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type variationRow struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Config    json.RawMessage `json:"config"`
	LogoURL   string          `json:"logoUrl,omitempty"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func scanVariation(row pgx.Row) (*variationRow, error) {
	var v variationRow
	var logo *string
	if err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.Config, &logo, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if logo != nil {
		v.LogoURL = *logo
	}
	return &v, nil
}

const variationColumns = `id, name, slug, config, logo_url, is_active, created_at, updated_at`

func (h *Handler) slugExists(ctx context.Context) appconfig.SlugExists {
	return func(ctx context.Context, slug string) (bool, error) {
		var exists bool
		err := h.DB.QueryRow(ctx, `select exists(select 1 from app_variations where slug = $1)`, slug).Scan(&exists)
		return exists, err
	}
}

// normalizeVariationConfig fills in the schema version so stored configs are
// always readable without the legacy fallback.
func normalizeVariationConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	var cfg appconfig.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Version == 0 {
		cfg.Version = appconfig.CurrentVersion
	}
	return json.Marshal(cfg)
}

func (h *Handler) AdminVariationsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.DB.Query(ctx, `select `+variationColumns+` from app_variations order by created_at desc`)
	if err != nil {
		h.Logger.Error("variations list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list variations")
		return
	}
	defer rows.Close()

	variations := make([]*variationRow, 0)
	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			h.Logger.Error("variation scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list variations")
			return
		}
		variations = append(variations, v)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("variations list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list variations")
		return
	}

	response.Success(w, map[string]any{"variations": variations})
}

type variationCreateRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

func (h *Handler) AdminVariationCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req variationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	cfg, err := normalizeVariationConfig(req.Config)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "config must be a JSON object")
		return
	}

	slug, err := appconfig.UniqueSlug(ctx, appconfig.Slugify(req.Name), h.slugExists(ctx))
	if err != nil {
		h.Logger.Error("slug generation failed", zapError(err))
		response.Error(w, http.StatusConflict, "SLUG_EXHAUSTED", "Could not derive a unique slug for this name")
		return
	}

	row := h.DB.QueryRow(ctx, `
		insert into app_variations (name, slug, config, is_active)
		values ($1, $2, $3, true)
		returning `+variationColumns,
		req.Name, slug, cfg)
	v, err := scanVariation(row)
	if err != nil {
		h.Logger.Error("variation insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create variation")
		return
	}

	response.Created(w, v)
}

type variationUpdateRequest struct {
	Name     *string         `json:"name"`
	Config   json.RawMessage `json:"config"`
	IsActive *bool           `json:"isActive"`
}

func (h *Handler) AdminVariationUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid variation id")
		return
	}

	var req variationUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty")
			return
		}
		args = append(args, name)
		sets = append(sets, "name = $"+strconv.Itoa(len(args)))
	}
	if len(req.Config) > 0 {
		cfg, cerr := normalizeVariationConfig(req.Config)
		if cerr != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "config must be a JSON object")
			return
		}
		args = append(args, cfg)
		sets = append(sets, "config = $"+strconv.Itoa(len(args)))
	}
	if req.IsActive != nil {
		args = append(args, *req.IsActive)
		sets = append(sets, "is_active = $"+strconv.Itoa(len(args)))
	}

	query := `update app_variations set ` + strings.Join(sets, ", ") + ` where id = $1 returning ` + variationColumns
	v, err := scanVariation(h.DB.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "VARIATION_NOT_FOUND", "Variation not found")
		return
	}
	if err != nil {
		h.Logger.Error("variation update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update variation")
		return
	}

	response.Success(w, v)
}

func (h *Handler) AdminVariationDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid variation id")
		return
	}

	var logo *string
	err = h.DB.QueryRow(ctx, `delete from app_variations where id = $1 returning logo_url`, id).Scan(&logo)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "VARIATION_NOT_FOUND", "Variation not found")
		return
	}
	if err != nil {
		h.Logger.Error("variation delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete variation")
		return
	}

	if h.Store != nil && logo != nil && *logo != "" {
		if derr := h.Store.DeleteURL(ctx, *logo); derr != nil {
			h.Logger.Warn("logo cleanup failed", zapError(derr))
		}
	}

	response.Success(w, map[string]any{"deleted": id})
}

// AdminVariationUploadLogo accepts a multipart image, normalizes it to JPEG
// (resized plus a square thumbnail), stores both in the object store, and
// records the public URL on the variation.
func (h *Handler) AdminVariationUploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Store == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Object storage is not configured")
		return
	}

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid variation id")
		return
	}

	if err := r.ParseMultipartForm(h.Config.MaxFileSizeBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.Config.MaxFileSizeBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The uploaded file is too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.Config.MaxFileSizeBytes+1))
	if err != nil {
		h.Logger.Error("upload read failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read upload")
		return
	}
	if int64(len(data)) > h.Config.MaxFileSizeBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The uploaded file is too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !utils.ValidateImageContentType(contentType) && !utils.ValidateImageContentType(utils.DetectContentType(data)) {
		response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE", "Unsupported image format")
		return
	}

	var previousLogo *string
	if err := h.DB.QueryRow(ctx, `select logo_url from app_variations where id = $1`, id).Scan(&previousLogo); err != nil {
		response.Error(w, http.StatusNotFound, "VARIATION_NOT_FOUND", "Variation not found")
		return
	}

	logoBytes, meta, err := utils.EncodeJpegFitInside(data, 1024, 85)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "IMAGE_DECODE_FAILED", "Could not decode the uploaded image")
		return
	}
	thumbBytes, _, err := utils.EncodeJpegCoverSquare(data, 256, 80)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "IMAGE_DECODE_FAILED", "Could not decode the uploaded image")
		return
	}

	base := "variations/" + strconv.FormatInt(id, 10) + "/" + uuid.NewString()
	logoURL, err := h.Store.PutObject(ctx, base+".jpg", logoBytes, "image/jpeg")
	if err != nil {
		h.Logger.Error("logo upload failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "STORAGE_ERROR", "Failed to store the logo")
		return
	}
	thumbURL, err := h.Store.PutObject(ctx, base+"_thumb.jpg", thumbBytes, "image/jpeg")
	if err != nil {
		h.Logger.Error("thumb upload failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "STORAGE_ERROR", "Failed to store the logo")
		return
	}

	if _, err := h.DB.Exec(ctx, `update app_variations set logo_url = $2, updated_at = now() where id = $1`, id, logoURL); err != nil {
		h.Logger.Error("logo record failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record the logo")
		return
	}

	if previousLogo != nil && *previousLogo != "" {
		if derr := h.Store.DeleteURL(ctx, *previousLogo); derr != nil {
			h.Logger.Warn("previous logo cleanup failed", zapError(derr))
		}
	}

	response.Success(w, map[string]any{
		"logoUrl":  logoURL,
		"thumbUrl": thumbURL,
		"source":   meta,
	})
}

// PublicVariation resolves a variation's storefront config by slug, merged
// over defaults so the client always sees a complete schema.
func (h *Handler) PublicVariation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slug := strings.TrimSpace(readPathString(r, "slug"))
	if slug == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "slug is required")
		return
	}

	var (
		raw  json.RawMessage
		logo *string
		name string
	)
	query := `select name, config, logo_url from app_variations where slug = $1 and is_active`
	err := h.DB.QueryRow(ctx, query, slug).Scan(&name, &raw, &logo)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "VARIATION_NOT_FOUND", "Variation not found")
		return
	}
	if err != nil {
		h.Logger.Error("variation fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load variation")
		return
	}

	resolved := appconfig.Resolve(raw)
	if logo != nil && *logo != "" {
		resolved.Branding.LogoURL = *logo
	}

	response.Success(w, map[string]any{
		"name":   name,
		"slug":   slug,
		"config": resolved,
	})
}

