package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/catalog/domain"
	"storefront-admin/internal/features/catalog/ports"

	"go.uber.org/zap"
)

// Local validation errors, checked before any network call.
var (
	// ErrUnknownResource is returned for an attribute resource the console
	// does not manage.
	ErrUnknownResource = errors.New("unknown catalog resource")
	// ErrNameRequired is returned when a product or attribute is submitted
	// without a name.
	ErrNameRequired = errors.New("name is required")
)

const catalogCachePrefix = "catalog:"

// CatalogService proxies catalog administration to the remote platform and
// caches list reads. Every successful mutation invalidates the catalog cache
// so subsequent reads refetch.
type CatalogService struct {
	// api is the remote catalog API.
	api ports.CatalogAPI
	// cache stores list responses briefly.
	cache cache.Cache
	// listTTL bounds how stale a cached list may be.
	listTTL time.Duration
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(api ports.CatalogAPI, c cache.Cache, listTTL time.Duration) *CatalogService {
	return &CatalogService{
		api:     api,
		cache:   c,
		listTTL: listTTL,
	}
}

// ListProducts returns a page of products, served from cache when a recent
// identical query exists.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	key := fmt.Sprintf("%sproducts:%s|%d|%d", catalogCachePrefix, filter.Search, filter.Page, filter.PageSize)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var page domain.ProductPage
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
	}

	page, err := s.api.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, data, s.listTTL); err != nil {
			logger.Get().Debug("Failed to cache product list", zap.Error(err))
		}
	}

	return page, nil
}

// GetProduct fetches one product from the remote platform.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return s.api.GetProduct(ctx, productID)
}

// CreateProduct creates a product on the platform.
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, ErrNameRequired
	}

	created, err := s.api.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return created, nil
}

// UpdateProduct replaces a product on the platform.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, product *domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, ErrNameRequired
	}

	updated, err := s.api.UpdateProduct(ctx, productID, product)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

// DeleteProduct permanently removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.api.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ListAttributes returns all values of one attribute resource, cached.
func (s *CatalogService) ListAttributes(ctx context.Context, resource string) ([]domain.Attribute, error) {
	if !domain.ValidResource(resource) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}

	key := catalogCachePrefix + resource

	if data, err := s.cache.Get(ctx, key); err == nil {
		var attrs []domain.Attribute
		if err := json.Unmarshal(data, &attrs); err == nil {
			return attrs, nil
		}
	}

	attrs, err := s.api.ListAttributes(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}

	if data, err := json.Marshal(attrs); err == nil {
		if err := s.cache.Set(ctx, key, data, s.listTTL); err != nil {
			logger.Get().Debug("Failed to cache attribute list", zap.Error(err))
		}
	}

	return attrs, nil
}

// CreateAttribute adds a value to an attribute resource.
func (s *CatalogService) CreateAttribute(ctx context.Context, resource string, attr *domain.Attribute) (*domain.Attribute, error) {
	if !domain.ValidResource(resource) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	if strings.TrimSpace(attr.Name) == "" {
		return nil, ErrNameRequired
	}

	created, err := s.api.CreateAttribute(ctx, resource, attr)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return created, nil
}

// UpdateAttribute renames an attribute value.
func (s *CatalogService) UpdateAttribute(ctx context.Context, resource, attrID string, attr *domain.Attribute) (*domain.Attribute, error) {
	if !domain.ValidResource(resource) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	if strings.TrimSpace(attr.Name) == "" {
		return nil, ErrNameRequired
	}

	updated, err := s.api.UpdateAttribute(ctx, resource, attrID, attr)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

// DeleteAttribute removes an attribute value.
func (s *CatalogService) DeleteAttribute(ctx context.Context, resource, attrID string) error {
	if !domain.ValidResource(resource) {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}

	if err := s.api.DeleteAttribute(ctx, resource, attrID); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate flushes every cached catalog list. Failures are logged only; the
// cache entries expire on their own TTL anyway.
func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, catalogCachePrefix); err != nil {
		logger.Get().Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}
