package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/cart"
	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/events"
	"github.com/noah-isme/backend-atacado/internal/obs"
	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/repo"
	"github.com/noah-isme/backend-atacado/internal/shipping"
)

// Input is the checkout request payload.
type Input struct {
	CartID string `json:"cartId"`
	Region string `json:"region"`
}

// Output is the checkout response payload.
type Output struct {
	OrderID             string         `json:"orderId"`
	Status              string         `json:"status"`
	TotalQty            int            `json:"totalQty"`
	TotalValue          int64          `json:"totalValue"`
	DiscountApplied     int64          `json:"discountApplied"`
	Shipping            shipping.Quote `json:"shipping"`
	FinalValue          int64          `json:"finalValue"`
	FinalValueFormatted string         `json:"finalValueFormatted"`
	Warnings            []string       `json:"warnings"`
}

type orderStore interface {
	Create(ctx context.Context, order repo.Order, items []repo.OrderItem) (repo.Order, error)
}

// Service turns a validated cart into a persisted order.
type Service struct {
	CartSvc  *cart.Service
	Orders   orderStore
	Rates    shipping.RateTable
	Limits   pricing.Limits
	Brackets pricing.BracketTable
	Events   *events.Bus
}

// Create validates the cart, quotes shipping, persists the order and deletes
// the cart session. A cart that fails validation is rejected with the rule
// violations as details; nothing is persisted in that case.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.CartSvc == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if in.CartID == "" {
		return Output{}, &common.AppError{Code: "BAD_REQUEST", Message: "cartId é obrigatório", HTTPStatus: http.StatusBadRequest}
	}

	engineCart, doc, err := s.CartSvc.Snapshot(ctx, in.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return Output{}, &common.AppError{Code: "NOT_FOUND", Message: "carrinho não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return Output{}, err
	}

	res := pricing.Validate(engineCart, s.Limits, s.Brackets)
	if !res.IsValid {
		if obs.CheckoutOrdersTotal != nil {
			obs.CheckoutOrdersTotal.WithLabelValues("rejected").Inc()
		}
		if s.Events != nil {
			if cartUUID, parseErr := uuid.Parse(doc.ID); parseErr == nil {
				_, _ = s.Events.Emit(ctx, events.TopicOrderRejected, cartUUID, map[string]any{
					"cartId": doc.ID,
					"errors": res.Errors,
				})
			}
		}
		message := "pedido não atende aos requisitos mínimos"
		if len(res.Errors) > 0 {
			message = res.Errors[0]
		}
		return Output{}, &common.AppError{
			Code:       "ORDER_INVALID",
			Message:    message,
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"errors": res.Errors, "warnings": res.Warnings},
		}
	}

	region := in.Region
	if region == "" {
		region = doc.Region
	}
	quote := s.Rates.Calculate(region, int64(res.TotalValue))
	summary := pricing.BuildSummary(res, quote)

	items := make([]repo.OrderItem, 0, len(res.Totals.Items))
	for _, item := range res.Totals.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return Output{}, fmt.Errorf("invalid product id in cart: %w", err)
		}
		items = append(items, repo.OrderItem{
			ProductID: productID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			IsSpecial: item.IsSpecial,
			LineTotal: item.LineTotal,
		})
	}

	order, err := s.Orders.Create(ctx, repo.Order{
		CartID:          doc.ID,
		Status:          repo.OrderStatusConfirmed,
		Region:          region,
		TotalQty:        res.TotalQty,
		Subtotal:        res.Totals.TotalPrice,
		DiscountApplied: res.DiscountApplied,
		BracketBps:      res.BracketDiscountBps,
		TotalValue:      res.TotalValue,
		ShippingValue:   quote.Value,
		ShippingDays:    quote.Days,
		FinalValue:      summary.FinalValue,
	}, items)
	if err != nil {
		if obs.CheckoutOrdersTotal != nil {
			obs.CheckoutOrdersTotal.WithLabelValues("error").Inc()
		}
		return Output{}, fmt.Errorf("persist order: %w", err)
	}

	_ = s.CartSvc.Store.Delete(ctx, doc.ID)

	if obs.CheckoutOrdersTotal != nil {
		obs.CheckoutOrdersTotal.WithLabelValues("accepted").Inc()
	}
	if obs.OrderValueCentavos != nil {
		obs.OrderValueCentavos.Observe(float64(summary.FinalValue))
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicOrderCreated, order.ID, map[string]any{
			"orderId":    order.ID.String(),
			"cartId":     doc.ID,
			"totalQty":   res.TotalQty,
			"finalValue": summary.FinalValue,
		})
	}

	return Output{
		OrderID:             order.ID.String(),
		Status:              order.Status,
		TotalQty:            res.TotalQty,
		TotalValue:          int64(res.TotalValue),
		DiscountApplied:     int64(res.DiscountApplied),
		Shipping:            quote,
		FinalValue:          int64(summary.FinalValue),
		FinalValueFormatted: common.FormatBRL(int64(summary.FinalValue)),
		Warnings:            res.Warnings,
	}, nil
}

// Preview validates the cart and quotes shipping without persisting anything.
func (s *Service) Preview(ctx context.Context, in Input) (pricing.Summary, error) {
	if s == nil || s.CartSvc == nil {
		return pricing.Summary{}, errors.New("checkout service not configured")
	}
	engineCart, doc, err := s.CartSvc.Snapshot(ctx, in.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return pricing.Summary{}, &common.AppError{Code: "NOT_FOUND", Message: "carrinho não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return pricing.Summary{}, err
	}
	res := pricing.Validate(engineCart, s.Limits, s.Brackets)
	region := in.Region
	if region == "" {
		region = doc.Region
	}
	quote := s.Rates.Calculate(region, int64(res.TotalValue))
	return pricing.BuildSummary(res, quote), nil
}
