package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/kit"
	"github.com/noah-isme/backend-atacado/internal/obs"
	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

type productGetter interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repo.Product, error)
}

type kitPricer interface {
	GetByID(ctx context.Context, id uuid.UUID) (kit.View, error)
}

// Service encapsulates cart domain operations. Every read re-resolves prices
// from the catalog and re-validates the cart; nothing price-related is
// trusted from the stored document except kit snapshots.
type Service struct {
	Store    *Store
	Products productGetter
	Kits     kitPricer
	Limits   pricing.Limits
	Brackets pricing.BracketTable
}

// ItemView is a priced cart line in API payloads.
type ItemView struct {
	ProductID          string `json:"productId"`
	Name               string `json:"name"`
	Qty                int    `json:"qty"`
	UnitPrice          int64  `json:"unitPrice"`
	UnitPriceFormatted string `json:"unitPriceFormatted"`
	IsSpecial          bool   `json:"isSpecial"`
	LineTotal          int64  `json:"lineTotal"`
	LineSavings        int64  `json:"lineSavings,omitempty"`
}

// KitView is a kit snapshot line in API payloads.
type KitView struct {
	KitID          string `json:"kitId"`
	Name           string `json:"name"`
	Sets           int    `json:"sets"`
	UnitsPerSet    int    `json:"unitsPerSet"`
	SellPrice      int64  `json:"sellPrice"`
	DiscountAmount int64  `json:"discountAmount"`
	LineTotal      int64  `json:"lineTotal"`
}

// View is the full cart payload: stored state plus the derived validation.
type View struct {
	ID                  string     `json:"id"`
	Region              string     `json:"region,omitempty"`
	Items               []ItemView `json:"items"`
	Kits                []KitView  `json:"kits"`
	TotalQty            int        `json:"totalQty"`
	TotalPrice          int64      `json:"totalPrice"`
	TotalValue          int64      `json:"totalValue"`
	TotalValueFormatted string     `json:"totalValueFormatted"`
	TotalSavings        int64      `json:"totalSavings"`
	DiscountApplied     int64      `json:"discountApplied"`
	BracketDiscountBps  int        `json:"bracketDiscountBps"`
	IsValid             bool       `json:"isValid"`
	MinimumMet          bool       `json:"minimumMet"`
	Errors              []string   `json:"errors"`
	Warnings            []string   `json:"warnings"`
}

// Create starts a new empty cart session.
func (s *Service) Create(ctx context.Context) (View, error) {
	doc, err := s.Store.Create(ctx)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// Get returns the cart with freshly resolved prices and validation.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	doc, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// AddItem adds qty units of a product, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, cartID string, productID uuid.UUID, qty int) (View, error) {
	if qty <= 0 {
		return View{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	doc, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	products, err := s.Products.GetMany(ctx, []uuid.UUID{productID})
	if err != nil {
		return View{}, err
	}
	if _, ok := products[productID]; !ok {
		return View{}, &common.AppError{Code: "NOT_FOUND", Message: "produto não encontrado", HTTPStatus: http.StatusNotFound}
	}
	merged := false
	for i := range doc.Lines {
		if doc.Lines[i].ProductID == productID {
			doc.Lines[i].Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		doc.Lines = append(doc.Lines, StoredLine{ProductID: productID, Qty: qty})
	}
	if err := s.Store.Save(ctx, doc); err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// UpdateQty sets the quantity of an existing line.
func (s *Service) UpdateQty(ctx context.Context, cartID string, productID uuid.UUID, qty int) (View, error) {
	if qty <= 0 {
		return View{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	doc, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	found := false
	for i := range doc.Lines {
		if doc.Lines[i].ProductID == productID {
			doc.Lines[i].Qty = qty
			found = true
			break
		}
	}
	if !found {
		return View{}, ErrNotFound
	}
	if err := s.Store.Save(ctx, doc); err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// RemoveItem drops a product line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID uuid.UUID) (View, error) {
	doc, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	kept := doc.Lines[:0]
	for _, line := range doc.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	doc.Lines = kept
	if err := s.Store.Save(ctx, doc); err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// AddKit adds sets of a kit, freezing the kit price at add time.
func (s *Service) AddKit(ctx context.Context, cartID string, kitID uuid.UUID, sets int) (View, error) {
	if sets <= 0 {
		return View{}, fmt.Errorf("sets must be positive: %w", ErrInvalidInput)
	}
	doc, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	for i := range doc.Kits {
		if doc.Kits[i].KitID == kitID {
			doc.Kits[i].Sets += sets
			if err := s.Store.Save(ctx, doc); err != nil {
				return View{}, err
			}
			return s.view(ctx, doc)
		}
	}
	priced, err := s.Kits.GetByID(ctx, kitID)
	if err != nil {
		return View{}, err
	}
	doc.Kits = append(doc.Kits, StoredKit{
		KitID:          kitID,
		Name:           priced.Name,
		Sets:           sets,
		UnitsPerSet:    priced.TotalQty,
		SellPrice:      priced.SellPrice,
		DiscountAmount: priced.DiscountAmount,
	})
	if err := s.Store.Save(ctx, doc); err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// SetRegion records the destination region used for shipping quotes.
func (s *Service) SetRegion(ctx context.Context, cartID, region string) (View, error) {
	doc, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	doc.Region = region
	if err := s.Store.Save(ctx, doc); err != nil {
		return View{}, err
	}
	return s.view(ctx, doc)
}

// Snapshot hydrates the stored document into the engine's cart form. Checkout
// uses it to validate against the exact same state the buyer last saw.
func (s *Service) Snapshot(ctx context.Context, id string) (pricing.Cart, Doc, error) {
	doc, err := s.Store.Get(ctx, id)
	if err != nil {
		return pricing.Cart{}, Doc{}, err
	}
	engineCart, err := s.hydrate(ctx, doc)
	if err != nil {
		return pricing.Cart{}, Doc{}, err
	}
	return engineCart, doc, nil
}

func (s *Service) hydrate(ctx context.Context, doc Doc) (pricing.Cart, error) {
	ids := make([]uuid.UUID, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.Products.GetMany(ctx, ids)
	if err != nil {
		return pricing.Cart{}, fmt.Errorf("resolve cart products: %w", err)
	}
	engineCart := pricing.Cart{}
	for _, line := range doc.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			// Product was deactivated after it entered the cart; skip it
			// rather than blocking the whole cart.
			continue
		}
		engineCart.Lines = append(engineCart.Lines, pricing.Line{
			ProductID:          product.ID.String(),
			Name:               product.Name,
			Qty:                line.Qty,
			NormalPrice:        product.NormalPrice,
			SpecialPrice:       product.SpecialPrice,
			SpecialPriceMinQty: product.SpecialPriceMinQty,
		})
	}
	for _, stored := range doc.Kits {
		engineCart.Kits = append(engineCart.Kits, pricing.KitLine{
			KitID:          stored.KitID.String(),
			Name:           stored.Name,
			Sets:           stored.Sets,
			UnitsPerSet:    stored.UnitsPerSet,
			SellPrice:      stored.SellPrice,
			DiscountAmount: stored.DiscountAmount,
		})
	}
	return engineCart, nil
}

func (s *Service) view(ctx context.Context, doc Doc) (View, error) {
	engineCart, err := s.hydrate(ctx, doc)
	if err != nil {
		return View{}, err
	}
	res := pricing.Validate(engineCart, s.Limits, s.Brackets)
	if obs.OrdersValidatedTotal != nil {
		outcome := "valid"
		if !res.IsValid {
			outcome = "invalid"
		}
		obs.OrdersValidatedTotal.WithLabelValues(outcome).Inc()
	}
	if res.IsValid && obs.BracketDiscountTotal != nil {
		obs.BracketDiscountTotal.WithLabelValues(strconv.Itoa(res.BracketDiscountBps)).Inc()
	}

	view := View{
		ID:                  doc.ID,
		Region:              doc.Region,
		Items:               make([]ItemView, 0, len(res.Totals.Items)),
		Kits:                make([]KitView, 0, len(doc.Kits)),
		TotalQty:            res.TotalQty,
		TotalPrice:          res.Totals.TotalPrice,
		TotalValue:          res.TotalValue,
		TotalValueFormatted: common.FormatBRL(res.TotalValue),
		TotalSavings:        res.Totals.TotalSavings,
		DiscountApplied:     res.DiscountApplied,
		BracketDiscountBps:  res.BracketDiscountBps,
		IsValid:             res.IsValid,
		MinimumMet:          res.MinimumMet,
		Errors:              res.Errors,
		Warnings:            res.Warnings,
	}
	for _, item := range res.Totals.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:          item.ProductID,
			Name:               item.Name,
			Qty:                item.Qty,
			UnitPrice:          item.UnitPrice,
			UnitPriceFormatted: common.FormatBRL(item.UnitPrice),
			IsSpecial:          item.IsSpecial,
			LineTotal:          item.LineTotal,
			LineSavings:        item.LineSavings,
		})
	}
	for _, stored := range doc.Kits {
		view.Kits = append(view.Kits, KitView{
			KitID:          stored.KitID.String(),
			Name:           stored.Name,
			Sets:           stored.Sets,
			UnitsPerSet:    stored.UnitsPerSet,
			SellPrice:      stored.SellPrice,
			DiscountAmount: stored.DiscountAmount,
			LineTotal:      int64(stored.Sets) * stored.SellPrice,
		})
	}
	return view, nil
}
