package kit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

// AdminHandler provides administrative kit management endpoints.
type AdminHandler struct {
	Service  *Service
	Validate *validator.Validate
}

type kitForm struct {
	Slug       string             `json:"slug" validate:"required,min=2,max=80"`
	Name       string             `json:"name" validate:"required,min=2,max=160"`
	Discount   int64              `json:"discount" validate:"min=0"`
	Components []kitComponentForm `json:"components" validate:"required,min=1,dive"`
	Active     *bool              `json:"active"`
}

type kitComponentForm struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

// CreateKit handles POST /api/v1/admin/kits.
func (h *AdminHandler) CreateKit(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil || h.Validate == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "kit admin not configured", nil)
		return
	}
	var form kitForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Namespace()] = fe.Tag()
			}
		}
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid kit fields", details)
		return
	}

	active := true
	if form.Active != nil {
		active = *form.Active
	}
	row := repo.Kit{
		Slug:     strings.TrimSpace(form.Slug),
		Name:     strings.TrimSpace(form.Name),
		Discount: form.Discount,
		Active:   active,
	}
	components := make([]repo.KitComponent, 0, len(form.Components))
	for _, c := range form.Components {
		productID, err := uuid.Parse(c.ProductID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", map[string]any{"productId": c.ProductID})
			return
		}
		components = append(components, repo.KitComponent{ProductID: productID, Qty: c.Qty})
	}

	view, err := h.Service.CreateKit(r.Context(), row, components)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create kit", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}
