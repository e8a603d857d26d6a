package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

// AdminHandler provides administrative catalog management endpoints.
type AdminHandler struct {
	Service  *Service
	Validate *validator.Validate
}

type productForm struct {
	Slug               string `json:"slug" validate:"required,min=2,max=80"`
	Name               string `json:"name" validate:"required,min=2,max=160"`
	Description        string `json:"description" validate:"max=4000"`
	NormalPrice        int64  `json:"normalPrice" validate:"required,gt=0"`
	SpecialPrice       int64  `json:"specialPrice" validate:"omitempty,gt=0,ltefield=NormalPrice"`
	SpecialPriceMinQty int    `json:"specialPriceMinQty" validate:"omitempty,min=1"`
	Stock              int    `json:"stock" validate:"min=0"`
	Active             *bool  `json:"active"`
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	created, err := h.Service.queries.Create(r.Context(), formToProduct(form, uuid.Nil))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}
	h.Service.invalidate(r.Context(), created.Slug)
	common.JSON(w, http.StatusCreated, map[string]any{"data": toView(created, true)})
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	existing, err := h.Service.queries.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "produto não encontrado", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	updated, err := h.Service.queries.Update(r.Context(), formToProduct(form, id))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update product", nil)
		return
	}
	h.Service.invalidate(r.Context(), existing.Slug, updated.Slug)
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(updated, true)})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{slug}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog admin not configured", nil)
		return
	}
	if err := h.Service.DeleteProduct(r.Context(), chi.URLParam(r, "slug")); err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete product", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) decodeForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	var form productForm
	if h.Service == nil || h.Validate == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog admin not configured", nil)
		return form, false
	}
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return form, false
	}
	// A special price only makes sense together with its minimum quantity.
	if (form.SpecialPrice > 0) != (form.SpecialPriceMinQty > 0) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST",
			"specialPrice and specialPriceMinQty must be set together", nil)
		return form, false
	}
	if err := h.Validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fe.Tag()
			}
		}
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid product fields", details)
		return form, false
	}
	return form, true
}

func formToProduct(form productForm, id uuid.UUID) repo.Product {
	active := true
	if form.Active != nil {
		active = *form.Active
	}
	return repo.Product{
		ID:                 id,
		Slug:               strings.TrimSpace(form.Slug),
		Name:               strings.TrimSpace(form.Name),
		Description:        strings.TrimSpace(form.Description),
		NormalPrice:        form.NormalPrice,
		SpecialPrice:       form.SpecialPrice,
		SpecialPriceMinQty: form.SpecialPriceMinQty,
		Stock:              form.Stock,
		Active:             active,
	}
}
