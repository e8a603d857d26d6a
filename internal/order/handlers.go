package order

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

type orderQuerier interface {
	GetByID(ctx context.Context, id uuid.UUID) (repo.Order, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]repo.OrderItem, error)
	List(ctx context.Context, limit, offset int) ([]repo.Order, error)
}

// Handler exposes read endpoints for persisted orders.
type Handler struct {
	Orders orderQuerier
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order queries not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	orders, err := h.Orders.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	response := make([]map[string]any, 0, len(orders))
	for _, ord := range orders {
		response = append(response, orderPayload(ord))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(response)))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": response,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: len(response),
		},
	})
}

// Get handles GET /api/v1/orders/{orderId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order queries not configured", nil)
		return
	}
	oID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	ord, err := h.Orders.GetByID(r.Context(), oID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "pedido não encontrado", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	items, err := h.Orders.Items(r.Context(), ord.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order items", nil)
		return
	}
	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, map[string]any{
			"productId": it.ProductID.String(),
			"name":      it.Name,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"isSpecial": it.IsSpecial,
			"lineTotal": it.LineTotal,
		})
	}
	payload := orderPayload(ord)
	payload["items"] = responseItems
	common.JSON(w, http.StatusOK, map[string]any{"data": payload})
}

func orderPayload(ord repo.Order) map[string]any {
	return map[string]any{
		"id":                  ord.ID.String(),
		"status":              ord.Status,
		"region":              ord.Region,
		"totalQty":            ord.TotalQty,
		"subtotal":            ord.Subtotal,
		"discountApplied":     ord.DiscountApplied,
		"bracketBps":          ord.BracketBps,
		"totalValue":          ord.TotalValue,
		"shippingValue":       ord.ShippingValue,
		"shippingDays":        ord.ShippingDays,
		"finalValue":          ord.FinalValue,
		"finalValueFormatted": common.FormatBRL(ord.FinalValue),
		"createdAt":           ord.CreatedAt,
	}
}
