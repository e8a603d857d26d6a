package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

type queryProvider interface {
	List(ctx context.Context, limit, offset int) ([]repo.Product, error)
	Count(ctx context.Context) (int, error)
	GetBySlug(ctx context.Context, slug string) (repo.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (repo.Product, error)
	Create(ctx context.Context, p repo.Product) (repo.Product, error)
	Update(ctx context.Context, p repo.Product) (repo.Product, error)
	Deactivate(ctx context.Context, slug string) error
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries      queryProvider
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// ProductView is the public product payload. Prices are in centavos; the
// formatted fields carry the display strings so every client renders the
// same value.
type ProductView struct {
	ID                    string `json:"id"`
	Slug                  string `json:"slug"`
	Name                  string `json:"name"`
	Description           string `json:"description,omitempty"`
	NormalPrice           int64  `json:"normalPrice"`
	NormalPriceFormatted  string `json:"normalPriceFormatted"`
	SpecialPrice          int64  `json:"specialPrice,omitempty"`
	SpecialPriceFormatted string `json:"specialPriceFormatted,omitempty"`
	SpecialPriceMinQty    int    `json:"specialPriceMinQty,omitempty"`
	Stock                 int    `json:"stock"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductView
	Total int
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListProducts returns a page of active products.
func (s *Service) ListProducts(ctx context.Context, page, limit int) (ProductListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	useCache := page == 1 && limit == s.defaultLimit
	key := "catalog:products:first_page"
	if useCache && s.cache != nil {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: page, Limit: limit}, nil
		}
	}

	total, err := s.queries.Count(ctx)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.queries.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		items = append(items, toView(row, false))
	}
	if useCache && s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return ProductListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetProduct returns the detail payload for one product by slug.
func (s *Service) GetProduct(ctx context.Context, slug string) (ProductView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductView{}, badRequest("slug", "slug is required", nil)
	}
	cacheKey := detailCacheKey(slug)
	if s.cache != nil {
		var cached ProductView
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	row, err := s.queries.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductView{}, &common.AppError{Code: "NOT_FOUND", Message: "produto não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return ProductView{}, fmt.Errorf("get product by slug: %w", err)
	}
	view := toView(row, true)
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, view)
	}
	return view, nil
}

// DeleteProduct deactivates a product so it no longer appears in the catalog
// or prices in carts. Past orders keep their snapshot of the product.
func (s *Service) DeleteProduct(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return badRequest("slug", "slug is required", nil)
	}
	if err := s.queries.Deactivate(ctx, slug); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &common.AppError{Code: "NOT_FOUND", Message: "produto não encontrado", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return fmt.Errorf("deactivate product: %w", err)
	}
	s.invalidate(ctx, slug)
	return nil
}

// invalidate drops the cached entries touched by an admin write.
func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{"catalog:products:first_page"}
	for _, slug := range slugs {
		if strings.TrimSpace(slug) != "" {
			keys = append(keys, detailCacheKey(slug))
		}
	}
	_ = s.cache.Delete(ctx, keys...)
}

func toView(p repo.Product, withDescription bool) ProductView {
	view := ProductView{
		ID:                   p.ID.String(),
		Slug:                 p.Slug,
		Name:                 p.Name,
		NormalPrice:          p.NormalPrice,
		NormalPriceFormatted: common.FormatBRL(p.NormalPrice),
		Stock:                p.Stock,
	}
	if withDescription {
		view.Description = p.Description
	}
	if p.SpecialPrice > 0 && p.SpecialPriceMinQty > 0 {
		view.SpecialPrice = p.SpecialPrice
		view.SpecialPriceFormatted = common.FormatBRL(p.SpecialPrice)
		view.SpecialPriceMinQty = p.SpecialPriceMinQty
	}
	return view
}

type cachedList struct {
	Items []ProductView `json:"items"`
	Total int           `json:"total"`
}

func detailCacheKey(slug string) string {
	return "catalog:products:detail:" + slug
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
