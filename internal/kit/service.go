package kit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/catalog"
	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/obs"
	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

type kitQuerier interface {
	List(ctx context.Context) ([]repo.Kit, error)
	GetByID(ctx context.Context, id uuid.UUID) (repo.Kit, error)
	GetBySlug(ctx context.Context, slug string) (repo.Kit, error)
	Components(ctx context.Context, kitID uuid.UUID) ([]repo.KitComponent, error)
	Create(ctx context.Context, kit repo.Kit, components []repo.KitComponent) (repo.Kit, error)
}

type productGetter interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repo.Product, error)
}

// Service prices promotional kits from their live component list.
type Service struct {
	kits     kitQuerier
	products productGetter
	cache    *catalog.Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Kits     kitQuerier
	Products productGetter
	Cache    *catalog.Cache
}

// ComponentView is one product inside a kit payload.
type ComponentView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
}

// View is the public kit payload with its computed price.
type View struct {
	ID                 string          `json:"id"`
	Slug               string          `json:"slug"`
	Name               string          `json:"name"`
	Components         []ComponentView `json:"components"`
	TotalQty           int             `json:"totalQty"`
	ListPrice          int64           `json:"listPrice"`
	SellPrice          int64           `json:"sellPrice"`
	SellPriceFormatted string          `json:"sellPriceFormatted"`
	PerUnitPrice       int64           `json:"perUnitPrice"`
	DiscountAmount     int64           `json:"discountAmount"`
	DiscountPercentBps int             `json:"discountPercentBps"`
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Kits == nil || cfg.Products == nil {
		return nil, errors.New("kit: kits and products queriers are required")
	}
	return &Service{kits: cfg.Kits, products: cfg.Products, cache: cfg.Cache}, nil
}

// List returns all active kits, each priced from current component data.
func (s *Service) List(ctx context.Context) ([]View, error) {
	rows, err := s.kits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	out := make([]View, 0, len(rows))
	for _, row := range rows {
		view, err := s.price(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// GetBySlug returns one active kit by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (View, error) {
	cacheKey := "kits:detail:" + slug
	if s.cache != nil {
		var cached View
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	row, err := s.kits.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return View{}, &common.AppError{Code: "NOT_FOUND", Message: "kit não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return View{}, fmt.Errorf("get kit by slug: %w", err)
	}
	view, err := s.price(ctx, row)
	if err != nil {
		return View{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, view)
	}
	return view, nil
}

// GetByID returns a kit by ID. Used by the cart when adding a kit.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (View, error) {
	row, err := s.kits.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return View{}, &common.AppError{Code: "NOT_FOUND", Message: "kit não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return View{}, fmt.Errorf("get kit: %w", err)
	}
	return s.price(ctx, row)
}

// CreateKit stores a new kit after checking that every component references
// an existing product, and returns the priced view.
func (s *Service) CreateKit(ctx context.Context, row repo.Kit, components []repo.KitComponent) (View, error) {
	ids := make([]uuid.UUID, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ProductID)
	}
	known, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return View{}, fmt.Errorf("check kit products: %w", err)
	}
	for _, c := range components {
		if _, ok := known[c.ProductID]; !ok {
			return View{}, &common.AppError{
				Code:       "BAD_REQUEST",
				Message:    "produto não encontrado no kit",
				HTTPStatus: http.StatusBadRequest,
				Details:    map[string]any{"productId": c.ProductID.String()},
			}
		}
	}
	created, err := s.kits.Create(ctx, row, components)
	if err != nil {
		return View{}, fmt.Errorf("create kit: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "kits:detail:"+created.Slug)
	}
	return s.price(ctx, created)
}

func (s *Service) price(ctx context.Context, row repo.Kit) (View, error) {
	components, err := s.kits.Components(ctx, row.ID)
	if err != nil {
		return View{}, fmt.Errorf("kit components: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return View{}, fmt.Errorf("kit products: %w", err)
	}

	bundle := pricing.Kit{ID: row.ID.String(), Name: row.Name, Discount: row.Discount}
	views := make([]ComponentView, 0, len(components))
	for _, c := range components {
		product, ok := products[c.ProductID]
		if !ok {
			return View{}, fmt.Errorf("kit %s references missing product %s", row.Slug, c.ProductID)
		}
		bundle.Components = append(bundle.Components, pricing.KitComponent{
			Product: pricing.Product{
				ID:                 product.ID.String(),
				Name:               product.Name,
				NormalPrice:        product.NormalPrice,
				SpecialPrice:       product.SpecialPrice,
				SpecialPriceMinQty: product.SpecialPriceMinQty,
			},
			Qty: c.Qty,
		})
		views = append(views, ComponentView{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Qty:       c.Qty,
			UnitPrice: product.NormalPrice,
		})
	}
	price, err := pricing.PriceKit(bundle)
	if err != nil {
		if errors.Is(err, pricing.ErrEmptyKit) {
			return View{}, &common.AppError{Code: "INVALID_KIT", Message: "kit sem componentes", HTTPStatus: http.StatusUnprocessableEntity, Err: err}
		}
		return View{}, fmt.Errorf("price kit: %w", err)
	}
	if obs.KitsPricedTotal != nil {
		obs.KitsPricedTotal.Inc()
	}
	return View{
		ID:                 row.ID.String(),
		Slug:               row.Slug,
		Name:               row.Name,
		Components:         views,
		TotalQty:           price.TotalQty,
		ListPrice:          price.ListPrice,
		SellPrice:          price.SellPrice,
		SellPriceFormatted: common.FormatBRL(price.SellPrice),
		PerUnitPrice:       price.PerUnitPrice,
		DiscountAmount:     price.DiscountAmount,
		DiscountPercentBps: price.DiscountPercentBps,
	}, nil
}
