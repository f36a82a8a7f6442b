package ports

import (
	"context"
	"errors"
	"fmt"

	"storefront-admin/internal/features/catalog/domain"
)

// ErrNotFound is returned when the remote platform has no such product or
// attribute.
var ErrNotFound = errors.New("catalog entry not found")

// RejectionError indicates the remote platform understood the request and
// refused it (HTTP 4xx), e.g. a duplicate SKU or a category still in use.
type RejectionError struct {
	// StatusCode is the HTTP status the platform responded with.
	StatusCode int
	// Message is the error detail reported by the platform.
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("commerce API rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsRejection reports whether err is a remote rejection and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// CatalogAPI defines the interface to the remote catalog-management API.
// The remote platform owns all catalog state; the gateway proxies mutations
// and caches list reads.
type CatalogAPI interface {
	// ListProducts retrieves a page of products matching the filter.
	ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)

	// GetProduct retrieves a single product by its identifier.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// CreateProduct creates a product and returns the server-confirmed record.
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// UpdateProduct replaces a product and returns the server-confirmed record.
	UpdateProduct(ctx context.Context, productID string, product *domain.Product) (*domain.Product, error)

	// DeleteProduct permanently removes a product.
	DeleteProduct(ctx context.Context, productID string) error

	// ListAttributes retrieves all values of one attribute resource.
	ListAttributes(ctx context.Context, resource string) ([]domain.Attribute, error)

	// CreateAttribute adds a value to an attribute resource.
	CreateAttribute(ctx context.Context, resource string, attr *domain.Attribute) (*domain.Attribute, error)

	// UpdateAttribute renames an attribute value.
	UpdateAttribute(ctx context.Context, resource, attrID string, attr *domain.Attribute) (*domain.Attribute, error)

	// DeleteAttribute removes an attribute value.
	DeleteAttribute(ctx context.Context, resource, attrID string) error
}
