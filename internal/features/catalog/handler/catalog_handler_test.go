package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-admin/internal/features/catalog/domain"
	"storefront-admin/internal/features/catalog/ports"
	"storefront-admin/internal/features/catalog/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalogAPI serves canned responses for handler tests.
type fakeCatalogAPI struct {
	attrs []domain.Attribute
	err   error
}

func (f *fakeCatalogAPI) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	return &domain.ProductPage{Total: 1, Page: filter.Page, PageSize: filter.PageSize}, f.err
}

func (f *fakeCatalogAPI) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Product{ID: productID, Name: "Linen Shirt"}, nil
}

func (f *fakeCatalogAPI) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := *product
	created.ID = "p-new"
	return &created, nil
}

func (f *fakeCatalogAPI) UpdateProduct(ctx context.Context, productID string, product *domain.Product) (*domain.Product, error) {
	return product, f.err
}

func (f *fakeCatalogAPI) DeleteProduct(ctx context.Context, productID string) error {
	return f.err
}

func (f *fakeCatalogAPI) ListAttributes(ctx context.Context, resource string) ([]domain.Attribute, error) {
	return f.attrs, f.err
}

func (f *fakeCatalogAPI) CreateAttribute(ctx context.Context, resource string, attr *domain.Attribute) (*domain.Attribute, error) {
	return attr, f.err
}

func (f *fakeCatalogAPI) UpdateAttribute(ctx context.Context, resource, attrID string, attr *domain.Attribute) (*domain.Attribute, error) {
	return attr, f.err
}

func (f *fakeCatalogAPI) DeleteAttribute(ctx context.Context, resource, attrID string) error {
	return f.err
}

// noopCache satisfies cache.Cache with cache misses only.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("key not found")
}
func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error       { return nil }
func (noopCache) DeleteByPrefix(ctx context.Context, p string) error { return nil }
func (noopCache) Ping(ctx context.Context) error                     { return nil }
func (noopCache) Close() error                                       { return nil }

func newTestApp(api *fakeCatalogAPI) *fiber.App {
	svc := service.NewCatalogService(api, noopCache{}, time.Second)
	h := NewCatalogHandler(svc)

	app := fiber.New()
	app.Get("/products", h.ListProducts)
	app.Post("/products", h.CreateProduct)
	app.Get("/products/:id", h.GetProduct)
	app.Put("/products/:id", h.UpdateProduct)
	app.Delete("/products/:id", h.DeleteProduct)
	app.Get("/catalog/:resource", h.ListAttributes)
	app.Post("/catalog/:resource", h.CreateAttribute)
	app.Put("/catalog/:resource/:id", h.UpdateAttribute)
	app.Delete("/catalog/:resource/:id", h.DeleteAttribute)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// TestGetProduct returns the proxied product.
func TestGetProduct(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{})

	resp, err := app.Test(jsonRequest(http.MethodGet, "/products/p1", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var product domain.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, "p1", product.ID)
}

// TestGetProduct_NotFound maps the port sentinel to 404.
func TestGetProduct_NotFound(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{err: ports.ErrNotFound})

	resp, err := app.Test(jsonRequest(http.MethodGet, "/products/missing", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestCreateProduct returns 201 with the server-confirmed record.
func TestCreateProduct(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/products", `{"name":"Linen Shirt","sku":"LS-1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "p-new", created.ID)
}

// TestCreateProduct_MissingName maps the validation sentinel to 422.
func TestCreateProduct_MissingName(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/products", `{"sku":"LS-1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// TestListAttributes_UnknownResource maps the resource check to 400.
func TestListAttributes_UnknownResource(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{})

	resp, err := app.Test(jsonRequest(http.MethodGet, "/catalog/materials", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestListAttributes returns the resource values.
func TestListAttributes(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{attrs: []domain.Attribute{{ID: "b1", Name: "Acme", Slug: "acme"}}})

	resp, err := app.Test(jsonRequest(http.MethodGet, "/catalog/brands", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var attrs []domain.Attribute
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attrs))
	require.Len(t, attrs, 1)
	assert.Equal(t, "Acme", attrs[0].Name)
}

// TestDeleteAttribute returns 204 on success.
func TestDeleteAttribute(t *testing.T) {
	app := newTestApp(&fakeCatalogAPI{})

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/catalog/sizes/s1", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
