package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/catalog"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

type fakeProductQueries struct {
	products []repo.Product
	created  []repo.Product
}

func (f *fakeProductQueries) List(_ context.Context, limit, offset int) ([]repo.Product, error) {
	if offset >= len(f.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[offset:end], nil
}

func (f *fakeProductQueries) Count(context.Context) (int, error) {
	return len(f.products), nil
}

func (f *fakeProductQueries) GetBySlug(_ context.Context, slug string) (repo.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug && p.Active {
			return p, nil
		}
	}
	return repo.Product{}, repo.ErrNotFound
}

func (f *fakeProductQueries) GetByID(_ context.Context, id uuid.UUID) (repo.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return repo.Product{}, repo.ErrNotFound
}

func (f *fakeProductQueries) Create(_ context.Context, p repo.Product) (repo.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.products = append(f.products, p)
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeProductQueries) Update(_ context.Context, p repo.Product) (repo.Product, error) {
	for i, existing := range f.products {
		if existing.ID == p.ID {
			f.products[i] = p
			return p, nil
		}
	}
	return repo.Product{}, repo.ErrNotFound
}

func (f *fakeProductQueries) Deactivate(_ context.Context, slug string) error {
	for i, p := range f.products {
		if p.Slug == slug && p.Active {
			f.products[i].Active = false
			return nil
		}
	}
	return repo.ErrNotFound
}

func newFakeQueries() *fakeProductQueries {
	return &fakeProductQueries{products: []repo.Product{
		{
			ID:                 uuid.New(),
			Slug:               "capinha-transparente",
			Name:               "Capinha transparente",
			Description:        "Capinha TPU transparente para vários modelos",
			NormalPrice:        1000,
			SpecialPrice:       700,
			SpecialPriceMinQty: 50,
			Stock:              2000,
			Active:             true,
		},
		{
			ID:          uuid.New(),
			Slug:        "cabo-usb-c",
			Name:        "Cabo USB-C 1m",
			NormalPrice: 1500,
			Stock:       800,
			Active:      true,
		},
	}}
}

type productsResponse struct {
	Data       []catalog.ProductView `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type productDetailResponse struct {
	Data catalog.ProductView `json:"data"`
}

func withSlug(req *http.Request, slug string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("slug", slug)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCatalogHandlers(t *testing.T) {
	queries := newFakeQueries()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Queries:      queries,
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)

	handler := catalog.NewHandler(catalog.HandlerConfig{Service: svc})

	t.Run("products list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=1", nil)
		rec := httptest.NewRecorder()
		handler.Products(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-Total-Count"))

		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Capinha transparente", resp.Data[0].Name)
		require.Equal(t, int64(1000), resp.Data[0].NormalPrice)
		require.Equal(t, "R$ 10,00", resp.Data[0].NormalPriceFormatted)
		require.Equal(t, 50, resp.Data[0].SpecialPriceMinQty)
		require.Equal(t, 2, resp.Pagination.TotalItems)
	})

	t.Run("product detail", func(t *testing.T) {
		req := withSlug(httptest.NewRequest(http.MethodGet, "/api/v1/products/capinha-transparente", nil), "capinha-transparente")
		rec := httptest.NewRecorder()
		handler.ProductDetail(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp productDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "capinha-transparente", resp.Data.Slug)
		require.Equal(t, "R$ 7,00", resp.Data.SpecialPriceFormatted)
		require.NotEmpty(t, resp.Data.Description)
	})

	t.Run("detail without special price omits wholesale fields", func(t *testing.T) {
		req := withSlug(httptest.NewRequest(http.MethodGet, "/api/v1/products/cabo-usb-c", nil), "cabo-usb-c")
		rec := httptest.NewRecorder()
		handler.ProductDetail(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp productDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Zero(t, resp.Data.SpecialPrice)
		require.Zero(t, resp.Data.SpecialPriceMinQty)
	})

	t.Run("unknown product", func(t *testing.T) {
		req := withSlug(httptest.NewRequest(http.MethodGet, "/api/v1/products/nao-existe", nil), "nao-existe")
		rec := httptest.NewRecorder()
		handler.ProductDetail(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminCreateProductValidation(t *testing.T) {
	queries := newFakeQueries()
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: queries})
	require.NoError(t, err)
	admin := &catalog.AdminHandler{Service: svc, Validate: validator.New()}

	t.Run("rejects special price above normal price", func(t *testing.T) {
		body := `{"slug":"pelicula-3d","name":"Película 3D","normalPrice":500,"specialPrice":900,"specialPriceMinQty":100}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		admin.CreateProduct(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects special price without min qty", func(t *testing.T) {
		body := `{"slug":"pelicula-3d","name":"Película 3D","normalPrice":500,"specialPrice":350}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		admin.CreateProduct(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("creates valid product", func(t *testing.T) {
		body := `{"slug":"pelicula-3d","name":"Película 3D","normalPrice":500,"specialPrice":350,"specialPriceMinQty":100,"stock":5000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		admin.CreateProduct(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, queries.created, 1)
		require.True(t, queries.created[0].Active)
	})
}

func TestAdminDeleteProduct(t *testing.T) {
	queries := newFakeQueries()
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: queries})
	require.NoError(t, err)
	admin := &catalog.AdminHandler{Service: svc, Validate: validator.New()}

	req := withSlug(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/cabo-usb-c", nil), "cabo-usb-c")
	rec := httptest.NewRecorder()
	admin.DeleteProduct(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	detail := withSlug(httptest.NewRequest(http.MethodGet, "/api/v1/products/cabo-usb-c", nil), "cabo-usb-c")
	rec = httptest.NewRecorder()
	catalog.NewHandler(catalog.HandlerConfig{Service: svc}).ProductDetail(rec, detail)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	admin.DeleteProduct(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code, "second delete finds nothing active")
}
